// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jonathalimax/cortexia-app/internal/deeplink"
	"github.com/jonathalimax/cortexia-app/internal/model"
	"github.com/jonathalimax/cortexia-app/internal/network"
	"github.com/jonathalimax/cortexia-app/internal/openai"
	"github.com/jonathalimax/cortexia-app/internal/provider"
	"github.com/jonathalimax/cortexia-app/internal/reachability"
)

// displayError converts a send failure into a system notice appended
// to the conversation. Persisting the notice is best effort.
func (c *Conversation) displayError(ctx context.Context, err error, cfg TurnConfig, chatID, editingID string) {
	log.Printf("chat: turn failed: %v", err)

	notice := model.NewSystemMessage(chatID, c.errorCopy(err, cfg))
	if perr := c.persistMessage(ctx, chatID, editingID, notice); perr != nil {
		log.Printf("chat: could not persist error notice: %v", perr)
	}
}

// errorCopy renders the user-facing explanation for a turn failure,
// with a settings deep link where one fixes the problem.
func (c *Conversation) errorCopy(err error, cfg TurnConfig) string {
	switch {
	case errors.Is(err, provider.ErrMissingBaseURL):
		return fmt.Sprintf("**Ollama API base URL not found**. Please [follow the link](%s) to add and try again.",
			deeplink.BaseURL.URL(c.linkScheme))

	case errors.Is(err, provider.ErrMissingSecretKey):
		return fmt.Sprintf("**Secret key not found** for %s API. Please [follow the link](%s) to add a brand new one.",
			cfg.API.Name(), deeplink.SecretKey.URL(c.linkScheme))

	case errors.Is(err, provider.ErrInvalidSecretKey):
		return fmt.Sprintf("**The secret key you entered is incorrect**. Please [follow the link](%s) to change it key and try again.",
			deeplink.SecretKey.URL(c.linkScheme))

	case errors.Is(err, ErrMissingModelID):
		return fmt.Sprintf("**Model selection is essential for proceeding**. Please [follow the link](%s) to select a model that meets your needs.",
			deeplink.Model.URL(c.linkScheme))

	case errors.Is(err, openai.ErrMissingAIMessage):
		return "I couldn't find any suitable options for your request. Please try rephrasing your query or providing more context."

	case errors.Is(err, reachability.ErrNoConnection):
		return "**No network connection detected.** Please ensure you have a stable internet connection and try again"

	default:
		var httpErr *network.HTTPError
		if errors.As(err, &httpErr) {
			log.Printf("chat: provider returned status %d", httpErr.StatusCode)
		}
		return "**Oops! Something went wrong.** Please try again later"
	}
}
