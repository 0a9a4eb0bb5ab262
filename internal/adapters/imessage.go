package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Napageneral/msgstats/internal/db"
	"github.com/Napageneral/msgstats/internal/event"
)

// DefaultChatDBPath returns ~/Library/Messages/chat.db.
func DefaultChatDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("Library", "Messages", "chat.db")
	}
	return filepath.Join(home, "Library", "Messages", "chat.db")
}

// IMessageSource reads message events from chat.db.
type IMessageSource struct {
	path string
	db   *sql.DB
}

var _ EventSource = (*IMessageSource)(nil)

// OpenIMessage opens chat.db read-only.
func OpenIMessage(ctx context.Context, path string) (*IMessageSource, error) {
	conn, err := db.OpenReadOnly(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("chat.db unavailable (Full Disk Access required for Terminal): %w", err)
	}
	return &IMessageSource{path: path, db: conn}, nil
}

func (s *IMessageSource) Name() string {
	return "imessage"
}

func (s *IMessageSource) Close() error {
	return s.db.Close()
}

// One row per (message, chat handle): a group message is attributed to
// every member of its chat.
const eventsQuery = `
	WITH chat_participant_count AS (
		SELECT chat_id, COUNT(DISTINCT handle_id) AS participant_count
		FROM chat_handle_join
		GROUP BY chat_id
	)
	SELECT
		h.id,
		m.is_from_me,
		m.date,
		cmj.chat_id,
		cpc.participant_count
	FROM message m
	JOIN chat_message_join cmj ON cmj.message_id = m.ROWID
	JOIN chat_handle_join chj ON chj.chat_id = cmj.chat_id
	JOIN handle h ON h.ROWID = chj.handle_id
	JOIN chat_participant_count cpc ON cpc.chat_id = cmj.chat_id
	WHERE m.date > 0
	ORDER BY cmj.chat_id, m.date, m.ROWID, h.id
`

// Events extracts message events. Rows with a NULL handle identifier are
// skipped; timestamps are passed through untouched.
func (s *IMessageSource) Events(ctx context.Context) ([]event.MessageEvent, ExtractResult, error) {
	start := time.Now()
	res := ExtractResult{Perf: map[string]string{}}

	tQuery := time.Now()
	rows, err := s.db.QueryContext(ctx, eventsQuery)
	if err != nil {
		return nil, res, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var out []event.MessageEvent
	chats := make(map[int64]struct{})
	for rows.Next() {
		var (
			ident        sql.NullString
			isFromMe     sql.NullInt64
			date         int64
			chatID       int64
			participants int
		)
		if err := rows.Scan(&ident, &isFromMe, &date, &chatID, &participants); err != nil {
			return nil, res, fmt.Errorf("failed to scan message row: %w", err)
		}
		if !ident.Valid || ident.String == "" {
			continue
		}
		chats[chatID] = struct{}{}
		out = append(out, event.MessageEvent{
			Identifier:     ident.String,
			Direction:      event.DirectionFromMe(isFromMe.Int64 == 1),
			Date:           date,
			ConversationID: chatID,
			Participants:   participants,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, res, fmt.Errorf("error iterating messages: %w", err)
	}
	res.Perf["query_duration"] = time.Since(tQuery).String()

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM message WHERE date > 0`).Scan(&res.Messages); err != nil {
		return nil, res, fmt.Errorf("failed to count messages: %w", err)
	}

	res.Events = len(out)
	res.Chats = len(chats)
	res.Duration = time.Since(start)
	res.Perf["total"] = res.Duration.String()
	return out, res, nil
}

// DateRange returns the native timestamps of the oldest and newest
// messages. ok is false for an empty store.
func (s *IMessageSource) DateRange(ctx context.Context) (min, max int64, ok bool, err error) {
	var lo, hi sql.NullInt64
	err = s.db.QueryRowContext(ctx, `SELECT MIN(date), MAX(date) FROM message WHERE date > 0`).Scan(&lo, &hi)
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to query date range: %w", err)
	}
	if !lo.Valid || !hi.Valid {
		return 0, 0, false, nil
	}
	return lo.Int64, hi.Int64, true, nil
}
