package pagination

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/Proton-105/pricerelay-bot/internal/chatlock"
	"github.com/Proton-105/pricerelay-bot/internal/i18n"
)

// DefaultPageSize is the number of lines per page.
const DefaultPageSize = 5

// View is what a chat should see after a pagination call.
// Moved is false when the call hit an edge and Text is a boundary notice.
type View struct {
	Text  string
	Page  int
	Total int
	Moved bool
}

// Store owns the page state of every chat. Per-chat calls are serialized.
type Store struct {
	storage Storage
	locks   chatlock.Locks
	t       i18n.Translator
	log     *slog.Logger
}

// NewStore wires a Store over storage. Replies are resolved through t.
func NewStore(storage Storage, t i18n.Translator, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}

	return &Store{
		storage: storage,
		t:       t,
		log:     log.With(slog.String("component", "pagination")),
	}
}

// Chunk splits lines into groups of size, keeping order. The last group may be shorter.
func Chunk(lines []string, size int) [][]string {
	if len(lines) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return lo.Chunk(lines, size)
}

// SetPages replaces the result set of chatID, rewinds it to the first page and
// returns that page. A step from the same chat cannot land in between.
func (s *Store) SetPages(ctx context.Context, chatID int64, pages [][]string) (View, error) {
	unlock := s.locks.Lock(chatID)
	defer unlock()

	if len(pages) == 0 {
		if err := s.storage.ClearState(ctx, chatID); err != nil {
			return View{}, err
		}
		return View{Text: s.noData()}, nil
	}

	state := &ChatPageState{
		ChatID:      chatID,
		Pages:       pages,
		CurrentPage: 0,
	}
	if err := s.storage.SetState(ctx, chatID, state); err != nil {
		return View{}, err
	}

	return View{
		Text:  s.render(state, 0),
		Page:  0,
		Total: len(pages),
		Moved: true,
	}, nil
}

// RenderPage formats page idx of chatID, or the no-data notice when it does not exist.
func (s *Store) RenderPage(ctx context.Context, chatID int64, idx int) (string, error) {
	state, err := s.load(ctx, chatID)
	if err != nil {
		return "", err
	}
	return s.render(state, idx), nil
}

// Current returns the view of the page chatID is on.
func (s *Store) Current(ctx context.Context, chatID int64) (View, error) {
	state, err := s.load(ctx, chatID)
	if err != nil {
		return View{}, err
	}
	if state == nil {
		return View{Text: s.noData()}, nil
	}
	return View{
		Text:  s.render(state, state.CurrentPage),
		Page:  state.CurrentPage,
		Total: len(state.Pages),
		Moved: true,
	}, nil
}

// Advance moves chatID one page forward.
func (s *Store) Advance(ctx context.Context, chatID int64) (View, error) {
	return s.step(ctx, chatID, 1, "pagination.last_page", "You are on the last page.")
}

// Retreat moves chatID one page back.
func (s *Store) Retreat(ctx context.Context, chatID int64) (View, error) {
	return s.step(ctx, chatID, -1, "pagination.first_page", "You are on the first page.")
}

func (s *Store) step(ctx context.Context, chatID int64, delta int, noticeKey, noticeFallback string) (View, error) {
	unlock := s.locks.Lock(chatID)
	defer unlock()

	state, err := s.load(ctx, chatID)
	if err != nil {
		return View{}, err
	}

	notice := i18n.Text(s.t, noticeKey, noticeFallback, nil)
	if state == nil {
		return View{Text: notice}, nil
	}

	next := state.CurrentPage + delta
	if !state.hasPage(next) {
		return View{Text: notice, Page: state.CurrentPage, Total: len(state.Pages)}, nil
	}

	state.CurrentPage = next
	if err := s.storage.SetState(ctx, chatID, state); err != nil {
		return View{}, err
	}

	return View{
		Text:  s.render(state, next),
		Page:  next,
		Total: len(state.Pages),
		Moved: true,
	}, nil
}

func (s *Store) load(ctx context.Context, chatID int64) (*ChatPageState, error) {
	state, err := s.storage.GetState(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil, nil
		}
		s.log.ErrorContext(ctx, "failed to load page state", slog.Int64("chat_id", chatID), slog.Any("error", err))
		return nil, err
	}
	return state, nil
}

func (s *Store) render(state *ChatPageState, idx int) string {
	if !state.hasPage(idx) {
		return s.noData()
	}

	header := i18n.Text(s.t, "pagination.header", "Prices for Page {{.Page}}:", map[string]string{
		"Page": strconv.Itoa(idx + 1),
	})
	footer := i18n.Text(s.t, "pagination.footer", "Use /next or /prev to navigate pages.", nil)

	return header + "\n" + strings.Join(state.Pages[idx], "\n") + "\n\n" + footer
}

func (s *Store) noData() string {
	return i18n.Text(s.t, "pagination.no_data", "No data available.", nil)
}
