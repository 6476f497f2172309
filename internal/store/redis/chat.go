package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/alicehocane/watch/internal/domain"
	"github.com/alicehocane/watch/internal/store"
)

// AppendChatMessage assigns the next sequence id with a Lua script so two
// concurrent appenders can never claim the same id. The sequence member is
// a throwaway nonce; the message body lives in a hash keyed by sequence.
func (r repo) AppendChatMessage(ctx context.Context, roomID string, params *store.AppendChatMessageParams) (domain.ChatMessage, error) {
	seqKey := r.getChatSeqKey(roomID)
	seq, err := r.rc.EvalSha(ctx, r.nextSeqScript, []string{seqKey}, uuid.NewString()).Int64()
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("failed to assign chat message id: %w", err)
	}

	msg := domain.ChatMessage{
		ID:       seq,
		AuthorID: params.AuthorID,
		Username: params.Username,
		Text:     params.Text,
		SentAt:   params.SentAt,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("failed to marshal chat message: %w", err)
	}

	itemsKey := r.getChatItemsKey(roomID)
	if err := r.rc.HSet(ctx, itemsKey, strconv.FormatInt(seq, 10), payload).Err(); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("failed to store chat message: %w", err)
	}

	r.rc.Expire(ctx, seqKey, r.expireDuration)
	r.rc.Expire(ctx, itemsKey, r.expireDuration)

	r.publishEvent(ctx, &store.Event{
		Kind:   store.EventChatAppended,
		RoomID: roomID,
		Chat:   &msg,
	})

	return msg, nil
}

// ChatTail returns at most limit of the most recently appended messages,
// ordered by SentAt ascending for display. Older history is not guaranteed
// visible.
func (r repo) ChatTail(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	seqKey := r.getChatSeqKey(roomID)
	entries, err := r.rc.ZRevRangeWithScores(ctx, seqKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get chat tail: %w", err)
	}

	if len(entries) == 0 {
		return []domain.ChatMessage{}, nil
	}

	fields := make([]string, 0, len(entries))
	for _, entry := range entries {
		fields = append(fields, strconv.FormatInt(int64(entry.Score), 10))
	}

	itemsKey := r.getChatItemsKey(roomID)
	values, err := r.rc.HMGet(ctx, itemsKey, fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get chat messages: %w", err)
	}

	messages := make([]domain.ChatMessage, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var msg domain.ChatMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			r.logger.WarnContext(ctx, "failed to unmarshal chat message", "error", err)
			continue
		}

		messages = append(messages, msg)
	}

	sort.Slice(messages, func(i, j int) bool {
		if messages[i].SentAt == messages[j].SentAt {
			return messages[i].ID < messages[j].ID
		}

		return messages[i].SentAt < messages[j].SentAt
	})

	r.rc.Expire(ctx, seqKey, r.expireDuration)
	r.rc.Expire(ctx, itemsKey, r.expireDuration)

	return messages, nil
}
