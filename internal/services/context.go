package services

import "context"

type contextKey string

const (
	novelIDKey   contextKey = "novel_id"
	chapterKey   contextKey = "chapter"
	stageKey     contextKey = "stage"
	requestIDKey contextKey = "request_id"
)

// WithNovelID annotates context with the novel identifier.
func WithNovelID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, novelIDKey, id)
}

// NovelIDFromContext extracts the novel identifier if present.
func NovelIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(novelIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithChapter annotates context with the chapter URL being processed.
func WithChapter(ctx context.Context, url string) context.Context {
	if url == "" {
		return ctx
	}
	return context.WithValue(ctx, chapterKey, url)
}

// ChapterFromContext returns the chapter URL if present.
func ChapterFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(chapterKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
