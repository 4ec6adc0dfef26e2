// Package gemini wraps the Google Gemini generative API for the pipeline's
// model-backed collaborators: image style analysis, attribute analysis,
// stylist and coupon selection, and template re-ranking.
//
// Every call goes through Client.generateJSON, which retries rate limits
// (HTTP 429 / RESOURCE_EXHAUSTED), server errors, and empty responses with
// capped exponential backoff, and decodes the model output with DecodeJSON,
// tolerating code fences and surrounding prose.
package gemini
