// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history lists past chats. Each chat is represented by its
// lead message, the earliest user message of the chat, grouped by
// calendar day with the most recent day first.
package history

import (
	"context"
	"sort"
	"time"

	"github.com/jonathalimax/cortexia-app/internal/model"
)

// Store is the persistence surface the history screen runs on.
type Store interface {
	FetchChats(ctx context.Context) ([]*model.Message, error)
	Chats(ctx context.Context) ([]model.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error
	CleanHistory(ctx context.Context) error
}

// DateGroup is one calendar day of chat leads, newest lead first.
type DateGroup struct {
	Date    time.Time
	Entries []*model.Message
}

// Service exposes the chat history operations.
type Service struct {
	store Store
}

// NewService creates a history service over the store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Fetch loads all persisted messages and aggregates them into date
// groups of lead messages.
func (s *Service) Fetch(ctx context.Context) ([]DateGroup, error) {
	msgs, err := s.store.FetchChats(ctx)
	if err != nil {
		return nil, err
	}
	return Aggregate(msgs), nil
}

// Chats returns the bare chat list: one record per chat with the
// moment it started, newest first.
func (s *Service) Chats(ctx context.Context) ([]model.Chat, error) {
	return s.store.Chats(ctx)
}

// Delete removes a chat and all of its messages.
func (s *Service) Delete(ctx context.Context, chatID string) error {
	return s.store.DeleteChat(ctx, chatID)
}

// Clear removes every persisted message.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.CleanHistory(ctx)
}

// Aggregate reduces a full message dump to date groups of lead
// messages. The lead of a chat is its earliest user message; ties on
// the timestamp break by ascending message id for a stable order.
// Groups are sorted most recent day first, entries within a group
// newest first.
func Aggregate(msgs []*model.Message) []DateGroup {
	leads := map[string]*model.Message{}
	for _, m := range msgs {
		if m.Sender != model.RoleUser {
			continue
		}
		lead, ok := leads[m.ChatID]
		if !ok || earlier(m, lead) {
			leads[m.ChatID] = m
		}
	}

	byDay := map[time.Time][]*model.Message{}
	for _, lead := range leads {
		day := dayStart(lead.SentAt)
		byDay[day] = append(byDay[day], lead)
	}

	groups := make([]DateGroup, 0, len(byDay))
	for day, entries := range byDay {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].SentAt.After(entries[j].SentAt)
		})
		groups = append(groups, DateGroup{Date: day, Entries: entries})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Date.After(groups[j].Date)
	})
	return groups
}

func earlier(a, b *model.Message) bool {
	if a.SentAt.Equal(b.SentAt) {
		return a.ID < b.ID
	}
	return a.SentAt.Before(b.SentAt)
}

func dayStart(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
