// Package deepseek wraps the DeepSeek chat completion API for the two calls
// the pipeline makes per chapter: translating the raw text and extracting
// newly appearing proper-noun pairs from the result.
package deepseek
