// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// PRICING TABLE
// =============================================================================

// ModelPricing holds a model's token rates in USD per million tokens.
type ModelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// pricing maps model ids to their token rates. Models absent from the
// table are billed at zero.
var pricing = map[string]ModelPricing{
	"gpt-3.5":                     {InputPerMillion: 2.0, OutputPerMillion: 2.0},
	"gpt-4-8k":                    {InputPerMillion: 30.0, OutputPerMillion: 60.0},
	"gpt-4-32k":                   {InputPerMillion: 60.0, OutputPerMillion: 120.0},
	"gpt-4-1106-preview":          {InputPerMillion: 10.0, OutputPerMillion: 30.0},
	"chatgpt-4o-latest":           {InputPerMillion: 5.0, OutputPerMillion: 15.0},
	"dall-e-2":                    {InputPerMillion: 0.020, OutputPerMillion: 0.020},
	"text-embedding-3-large":      {InputPerMillion: 0.13, OutputPerMillion: 0.13},
	"tts-1":                       {InputPerMillion: 5.0, OutputPerMillion: 5.0},
	"tts-1-1106":                  {InputPerMillion: 6.0, OutputPerMillion: 6.0},
	"gpt-4-0125-preview":          {InputPerMillion: 10.0, OutputPerMillion: 30.0},
	"gpt-3.5-turbo-0125":          {InputPerMillion: 0.50, OutputPerMillion: 1.50},
	"gpt-4-turbo-preview":         {InputPerMillion: 10.0, OutputPerMillion: 30.0},
	"gpt-3.5-turbo":               {InputPerMillion: 3.0, OutputPerMillion: 6.0},
	"whisper-1":                   {InputPerMillion: 0.0060, OutputPerMillion: 0.006},
	"gpt-3.5-turbo-16k":           {InputPerMillion: 3.0, OutputPerMillion: 4.0},
	"text-embedding-3-small":      {InputPerMillion: 0.02, OutputPerMillion: 0.02},
	"gpt-4-turbo-2024-04-09":      {InputPerMillion: 10.0, OutputPerMillion: 30.0},
	"gpt-4-turbo":                 {InputPerMillion: 10.0, OutputPerMillion: 30.0},
	"gpt-3.5-turbo-1106":          {InputPerMillion: 1.0, OutputPerMillion: 2.0},
	"tts-1-hd":                    {InputPerMillion: 7.0, OutputPerMillion: 7.0},
	"tts-1-hd-1106":               {InputPerMillion: 8.0, OutputPerMillion: 8.0},
	"gpt-3.5-turbo-instruct-0914": {InputPerMillion: 1.5, OutputPerMillion: 2.0},
	"gpt-4-0613":                  {InputPerMillion: 30.0, OutputPerMillion: 60.0},
	"gpt-4":                       {InputPerMillion: 30.0, OutputPerMillion: 60.0},
	"gpt-3.5-turbo-instruct":      {InputPerMillion: 1.5, OutputPerMillion: 2.0},
	"babbage-002":                 {InputPerMillion: 0.4, OutputPerMillion: 0.4},
	"davinci-002":                 {InputPerMillion: 2.0, OutputPerMillion: 2.0},
	"dall-e-3":                    {InputPerMillion: 0.040, OutputPerMillion: 0.040},
	"gpt-4o-2024-05-13":           {InputPerMillion: 5.0, OutputPerMillion: 15.0},
	"gpt-4o-2024-08-06":           {InputPerMillion: 2.5, OutputPerMillion: 10.0},
	"gpt-4o":                      {InputPerMillion: 2.5, OutputPerMillion: 10.0},
	"text-embedding-ada-002":      {InputPerMillion: 1.0, OutputPerMillion: 1.0},
	"gpt-4o-mini":                 {InputPerMillion: 0.15, OutputPerMillion: 0.6},
	"gpt-4o-mini-2024-07-18":      {InputPerMillion: 0.15, OutputPerMillion: 0.6},
}

// PricingFor returns the token rates for a model id.
func PricingFor(modelID string) (ModelPricing, bool) {
	p, ok := pricing[modelID]
	return p, ok
}

// =============================================================================
// COST CALCULATION
// =============================================================================

// UsageCost computes the dollar cost of one message's token usage.
//
// The charge is side-specific: a user message is billed only for its
// prompt tokens at the input rate, an assistant message only for its
// completion tokens at the output rate. Every other role, and any
// model missing from the price table, costs zero.
func UsageCost(modelID string, sender Role, promptTokens, completionTokens int) float64 {
	p, ok := pricing[modelID]
	if !ok {
		return 0
	}

	switch sender {
	case RoleUser:
		return float64(promptTokens) / 1_000_000 * p.InputPerMillion
	case RoleAssistant:
		return float64(completionTokens) / 1_000_000 * p.OutputPerMillion
	default:
		return 0
	}
}
