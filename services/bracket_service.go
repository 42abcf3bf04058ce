package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/opendraw/draw-engine/brackets"
	"github.com/opendraw/draw-engine/models"
	"github.com/opendraw/draw-engine/repositories"
	"golang.org/x/sync/errgroup"
)

// BracketView is the combined read model: the nested structure for
// traversal plus the authoritative flat ledger.
type BracketView struct {
	Bracket *models.Bracket       `json:"bracket"`
	Ledger  []*models.LedgerMatch `json:"ledger"`
	Roster  []models.Participant  `json:"roster"`
}

type BracketService interface {
	Generate(ctx context.Context, eventID, categoryID string, configs []brackets.RoundConfig) (*models.Bracket, error)
	Get(ctx context.Context, eventID, categoryID string) (*BracketView, error)
	Publish(ctx context.Context, eventID, categoryID string) (*models.Bracket, error)
	Unpublish(ctx context.Context, eventID, categoryID string) (*models.Bracket, error)
	AppendRound(ctx context.Context, eventID, categoryID string, config *brackets.RoundConfig) (*models.Bracket, error)
	Resync(ctx context.Context, eventID, categoryID string) (*models.Bracket, error)
	Reset(ctx context.Context, eventID, categoryID string) error
	Delete(ctx context.Context, eventID, categoryID string) error

	ReshuffleByes(ctx context.Context, eventID, categoryID string, expectedCount *int) (*models.Bracket, error)
	AssignBye(ctx context.Context, eventID, categoryID, matchID, participantID string, slot models.SlotName) (*models.Bracket, error)
	FinalizeByes(ctx context.Context, eventID, categoryID string) (*models.Bracket, error)
}

type bracketService struct {
	db           *sql.DB
	bracketRepo  repositories.BracketRepository
	rosterRepo   repositories.RosterRepository
	ledgerRepo   repositories.LedgerRepository
	materializer *Materializer
	seeding      *brackets.SeedingEngine
	byes         *brackets.ByeManager
	hub          *brackets.Hub
	logger       *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	bracketRepo repositories.BracketRepository,
	rosterRepo repositories.RosterRepository,
	ledgerRepo repositories.LedgerRepository,
	materializer *Materializer,
	seeding *brackets.SeedingEngine,
	byes *brackets.ByeManager,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &bracketService{
		db:           db,
		bracketRepo:  bracketRepo,
		rosterRepo:   rosterRepo,
		ledgerRepo:   ledgerRepo,
		materializer: materializer,
		seeding:      seeding,
		byes:         byes,
		hub:          hub,
		logger:       logger,
	}
}

func validateScope(eventID, categoryID string) error {
	if eventID == "" {
		return ErrEventRequired
	}
	if categoryID == "" {
		return ErrCategoryRequired
	}
	return nil
}

// shuffleSeed derives the deterministic unranked-shuffle seed from the
// category scope, so previews and re-runs of the same draw agree.
func shuffleSeed(eventID, categoryID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(eventID))
	h.Write([]byte{0})
	h.Write([]byte(categoryID))
	return int64(h.Sum64())
}

// Generate builds, seeds and materializes the elimination draw for a
// category from its current roster. Safe to re-run while the bracket is
// draft; re-generation starts from a clean structure.
func (s *bracketService) Generate(ctx context.Context, eventID, categoryID string, configs []brackets.RoundConfig) (*models.Bracket, error) {
	if err := validateScope(eventID, categoryID); err != nil {
		return nil, err
	}

	roster, seeds, err := s.rosterRepo.ListByCategory(ctx, eventID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for %s/%s: %w", eventID, categoryID, err)
	}

	existing, err := s.bracketRepo.Get(ctx, eventID, categoryID)
	if err != nil && !errors.Is(err, repositories.ErrBracketNotFound) {
		return nil, err
	}

	bracket := &models.Bracket{
		ID:         uuid.NewString(),
		EventID:    eventID,
		CategoryID: categoryID,
		Mode:       models.ModeElimination,
		SeedMap:    models.SeedMap{Global: seeds},
		CreatedAt:  time.Now().UTC(),
	}
	if existing != nil {
		if existing.Published {
			return nil, ErrBracketLocked
		}
		if existing.Mode == models.ModeMedia && existing.MediaKey != nil {
			return nil, ErrModeConflict
		}
		// Keep the document identity and any round-scoped seed
		// overrides the operator already set up.
		bracket.ID = existing.ID
		bracket.CreatedAt = existing.CreatedAt
		bracket.SeedMap.Rounds = existing.SeedMap.Rounds
	}

	rounds, drawSize, err := brackets.BuildStructure(len(roster), configs)
	if err != nil {
		return nil, err
	}
	bracket.Rounds = rounds
	bracket.DrawSize = drawSize

	if err := s.seeding.Seed(bracket, roster, shuffleSeed(eventID, categoryID)); err != nil {
		return nil, err
	}

	if err := s.bracketRepo.Upsert(ctx, s.db, bracket); err != nil {
		return nil, fmt.Errorf("failed to save bracket document: %w", err)
	}

	created, err := s.materializer.Materialize(ctx, s.db, bracket)
	if err != nil {
		// The document is saved; materialization is retryable.
		s.logger.Error("materialization failed after bracket generation",
			slog.String("event_id", eventID),
			slog.String("category_id", categoryID),
			slog.Any("error", err))
	} else {
		s.logger.Info("bracket generated",
			slog.String("event_id", eventID),
			slog.String("category_id", categoryID),
			slog.Int("draw_size", drawSize),
			slog.Int("ledger_rows_created", created))
	}

	// Rows surviving from a previous generation keep their identity
	// columns only if we push the fresh placements over them.
	if err := s.materializer.SyncStructureToLedger(ctx, bracket); err != nil {
		s.logger.Error("ledger sync failed after bracket generation",
			slog.String("event_id", eventID),
			slog.String("category_id", categoryID),
			slog.Any("error", err))
	}

	s.hub.BroadcastToRoom(brackets.RoomKey(eventID, categoryID), brackets.MessageBracketUpdated, bracket)
	return bracket, nil
}

// Get loads the document, ledger and roster in parallel.
func (s *bracketService) Get(ctx context.Context, eventID, categoryID string) (*BracketView, error) {
	if err := validateScope(eventID, categoryID); err != nil {
		return nil, err
	}

	view := &BracketView{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bracket, err := s.bracketRepo.Get(gCtx, eventID, categoryID)
		if err != nil {
			if errors.Is(err, repositories.ErrBracketNotFound) {
				return ErrBracketNotFound
			}
			return err
		}
		view.Bracket = bracket
		return nil
	})
	g.Go(func() error {
		ledger, err := s.ledgerRepo.ListByCategory(gCtx, eventID, categoryID)
		if err != nil {
			return err
		}
		view.Ledger = ledger
		return nil
	})
	g.Go(func() error {
		roster, _, err := s.rosterRepo.ListByCategory(gCtx, eventID, categoryID)
		if err != nil {
			return err
		}
		view.Roster = roster
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *bracketService) Publish(ctx context.Context, eventID, categoryID string) (*models.Bracket, error) {
	bracket, err := s.loadDraft(ctx, eventID, categoryID, false)
	if err != nil {
		if errors.Is(err, ErrBracketLocked) {
			return nil, ErrAlreadyPublished
		}
		return nil, err
	}
	bracket.Published = true
	if err := s.bracketRepo.Upsert(ctx, s.db, bracket); err != nil {
		return nil, err
	}
	s.hub.BroadcastToRoom(brackets.RoomKey(eventID, categoryID), brackets.MessageBracketUpdated, bracket)
	return bracket, nil
}

func (s *bracketService) Unpublish(ctx context.Context, eventID, categoryID string) (*models.Bracket, error) {
	bracket, err := s.load(ctx, eventID, categoryID)
	if err != nil {
		return nil, err
	}
	bracket.Published = false
	if err := s.bracketRepo.Upsert(ctx, s.db, bracket); err != nil {
		return nil, err
	}
	s.hub.BroadcastToRoom(brackets.RoomKey(eventID, categoryID), brackets.MessageBracketUpdated, bracket)
	return bracket, nil
}

// AppendRound adds the next round once every non-bye match in the
// current last round has a winner. Two concurrent calls are a known
// race (both can pass the gate before either writes); the ledger's
// unique round key stops duplicate rows but callers needing strict
// ordering should serialize on their side.
func (s *bracketService) AppendRound(ctx context.Context, eventID, categoryID string, config *brackets.RoundConfig) (*models.Bracket, error) {
	bracket, err := s.loadDraft(ctx, eventID, categoryID, true)
	if err != nil {
		return nil, err
	}

	if _, err := brackets.AppendRound(bracket, config); err != nil {
		return nil, err
	}
	if err := s.bracketRepo.Upsert(ctx, s.db, bracket); err != nil {
		return nil, err
	}
	if _, err := s.materializer.Materialize(ctx, s.db, bracket); err != nil {
		s.logger.Error("materialization failed after round append",
			slog.String("event_id", eventID),
			slog.String("category_id", categoryID),
			slog.Any("error", err))
	}
	s.hub.BroadcastToRoom(brackets.RoomKey(eventID, categoryID), brackets.MessageBracketUpdated, bracket)
	return bracket, nil
}

// Resync re-materializes any missing ledger rows and pulls the
// authoritative results from the ledger back into the structure. It is
// the recovery entry point after a failed propagation and is allowed on
// published brackets.
func (s *bracketService) Resync(ctx context.Context, eventID, categoryID string) (*models.Bracket, error) {
	bracket, err := s.load(ctx, eventID, categoryID)
	if err != nil {
		return nil, err
	}
	if bracket.Mode != models.ModeElimination || len(bracket.Rounds) == 0 {
		return nil, ErrBracketNotFound
	}

	if _, err := s.materializer.Materialize(ctx, s.db, bracket); err != nil {
		return nil, fmt.Errorf("failed to materialize during resync: %w", err)
	}
	if err := s.materializer.SyncLedgerToStructure(ctx, bracket); err != nil {
		return nil, err
	}
	if err := s.bracketRepo.Upsert(ctx, s.db, bracket); err != nil {
		return nil, err
	}
	s.logger.Info("bracket resynced from ledger",
		slog.String("event_id", eventID),
		slog.String("category_id", categoryID))
	s.hub.BroadcastToRoom(brackets.RoomKey(eventID, categoryID), brackets.MessageBracketUpdated, bracket)
	return bracket, nil
}

// Reset clears the rounds and removes the category's ledger rows. The
// roster and seed map survive, so the draw can be regenerated.
func (s *bracketService) Reset(ctx context.Context, eventID, categoryID string) error {
	bracket, err := s.loadDraft(ctx, eventID, categoryID, false)
	if err != nil {
		return err
	}

	bracket.Rounds = nil
	bracket.DrawSize = 0
	bracket.ByesFinalized = false
	bracket.ByesFinalizedAt = nil
	if err := s.bracketRepo.Upsert(ctx, s.db, bracket); err != nil {
		return err
	}
	deleted, err := s.ledgerRepo.DeleteByCategory(ctx, s.db, eventID, categoryID)
	if err != nil {
		return fmt.Errorf("failed to clear ledger for %s/%s: %w", eventID, categoryID, err)
	}
	s.logger.Info("bracket reset",
		slog.String("event_id", eventID),
		slog.String("category_id", categoryID),
		slog.Int64("ledger_rows_deleted", deleted))
	s.hub.BroadcastToRoom(brackets.RoomKey(eventID, categoryID), brackets.MessageBracketUpdated, bracket)
	return nil
}

func (s *bracketService) Delete(ctx context.Context, eventID, categoryID string) error {
	if err := validateScope(eventID, categoryID); err != nil {
		return err
	}
	if err := s.bracketRepo.Delete(ctx, eventID, categoryID); err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return ErrBracketNotFound
		}
		return err
	}
	if _, err := s.ledgerRepo.DeleteByCategory(ctx, s.db, eventID, categoryID); err != nil {
		return fmt.Errorf("failed to clear ledger for %s/%s: %w", eventID, categoryID, err)
	}
	return nil
}

func (s *bracketService) ReshuffleByes(ctx context.Context, eventID, categoryID string, expectedCount *int) (*models.Bracket, error) {
	bracket, err := s.loadDraft(ctx, eventID, categoryID, true)
	if err != nil {
		return nil, err
	}

	// A different shuffle each invocation is the point of a reshuffle.
	seed := shuffleSeed(eventID, categoryID) ^ time.Now().UnixNano()
	if err := s.byes.Reshuffle(bracket, expectedCount, seed); err != nil {
		return nil, err
	}
	return s.saveAndSync(ctx, bracket)
}

func (s *bracketService) AssignBye(ctx context.Context, eventID, categoryID, matchID, participantID string, slot models.SlotName) (*models.Bracket, error) {
	bracket, err := s.loadDraft(ctx, eventID, categoryID, true)
	if err != nil {
		return nil, err
	}
	if err := s.byes.AssignByeToPlayer(bracket, matchID, participantID, slot); err != nil {
		return nil, err
	}
	return s.saveAndSync(ctx, bracket)
}

func (s *bracketService) FinalizeByes(ctx context.Context, eventID, categoryID string) (*models.Bracket, error) {
	bracket, err := s.loadDraft(ctx, eventID, categoryID, true)
	if err != nil {
		return nil, err
	}
	s.byes.Finalize(bracket)
	if err := s.bracketRepo.Upsert(ctx, s.db, bracket); err != nil {
		return nil, err
	}
	return bracket, nil
}

func (s *bracketService) load(ctx context.Context, eventID, categoryID string) (*models.Bracket, error) {
	if err := validateScope(eventID, categoryID); err != nil {
		return nil, err
	}
	bracket, err := s.bracketRepo.Get(ctx, eventID, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	return bracket, nil
}

// loadDraft loads a bracket that must still be editable. Structural
// edits additionally require elimination mode with a built structure.
func (s *bracketService) loadDraft(ctx context.Context, eventID, categoryID string, needRounds bool) (*models.Bracket, error) {
	bracket, err := s.load(ctx, eventID, categoryID)
	if err != nil {
		return nil, err
	}
	if bracket.Published {
		return nil, ErrBracketLocked
	}
	if needRounds {
		if bracket.Mode != models.ModeElimination {
			return nil, ErrModeConflict
		}
		if len(bracket.Rounds) == 0 {
			return nil, ErrBracketNotFound
		}
	}
	return bracket, nil
}

func (s *bracketService) saveAndSync(ctx context.Context, bracket *models.Bracket) (*models.Bracket, error) {
	if err := s.bracketRepo.Upsert(ctx, s.db, bracket); err != nil {
		return nil, err
	}
	if _, err := s.materializer.Materialize(ctx, s.db, bracket); err != nil {
		s.logger.Error("materialization failed after bye edit",
			slog.String("event_id", bracket.EventID),
			slog.String("category_id", bracket.CategoryID),
			slog.Any("error", err))
	}
	if err := s.materializer.SyncStructureToLedger(ctx, bracket); err != nil {
		s.logger.Error("ledger sync failed after bye edit",
			slog.String("event_id", bracket.EventID),
			slog.String("category_id", bracket.CategoryID),
			slog.Any("error", err))
	}
	s.hub.BroadcastToRoom(brackets.RoomKey(bracket.EventID, bracket.CategoryID), brackets.MessageBracketUpdated, bracket)
	return bracket, nil
}
