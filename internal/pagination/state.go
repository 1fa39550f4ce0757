// Package pagination keeps the last multi-page result set of every chat and its current page.
package pagination

import (
	"errors"
	"time"
)

// ErrStateNotFound indicates that a chat has no stored result set.
var ErrStateNotFound = errors.New("pagination state not found")

// ChatPageState is the paginated result set of one chat.
// CurrentPage stays within [0, len(Pages)).
type ChatPageState struct {
	ChatID      int64      `json:"chat_id"`
	Pages       [][]string `json:"pages"`
	CurrentPage int        `json:"current_page"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (s *ChatPageState) hasPage(idx int) bool {
	return s != nil && idx >= 0 && idx < len(s.Pages)
}

func cloneState(s *ChatPageState) *ChatPageState {
	if s == nil {
		return nil
	}

	pages := make([][]string, len(s.Pages))
	for i, page := range s.Pages {
		pages[i] = append([]string(nil), page...)
	}

	return &ChatPageState{
		ChatID:      s.ChatID,
		Pages:       pages,
		CurrentPage: s.CurrentPage,
		UpdatedAt:   s.UpdatedAt,
	}
}
