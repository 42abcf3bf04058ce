package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/opendraw/draw-engine/brackets"
	"github.com/opendraw/draw-engine/models"
	"github.com/opendraw/draw-engine/repositories"
	"github.com/opendraw/draw-engine/storage"
)

// MediaService manages static draw images: a category either carries a
// generated bracket or an uploaded media draw, never both.
type MediaService interface {
	UploadDraw(ctx context.Context, eventID, categoryID, contentType string, reader io.Reader) (*models.Bracket, error)
	DeleteDraw(ctx context.Context, eventID, categoryID string) (*models.Bracket, error)
}

type mediaService struct {
	db          *sql.DB
	bracketRepo repositories.BracketRepository
	uploader    storage.FileUploader
	hub         *brackets.Hub
	logger      *slog.Logger
}

func NewMediaService(
	db *sql.DB,
	bracketRepo repositories.BracketRepository,
	uploader storage.FileUploader,
	hub *brackets.Hub,
	logger *slog.Logger,
) MediaService {
	if logger == nil {
		logger = slog.Default()
	}
	return &mediaService{
		db:          db,
		bracketRepo: bracketRepo,
		uploader:    uploader,
		hub:         hub,
		logger:      logger,
	}
}

func (s *mediaService) UploadDraw(ctx context.Context, eventID, categoryID, contentType string, reader io.Reader) (*models.Bracket, error) {
	if err := validateScope(eventID, categoryID); err != nil {
		return nil, err
	}

	bracket, err := s.bracketRepo.Get(ctx, eventID, categoryID)
	if err != nil && !errors.Is(err, repositories.ErrBracketNotFound) {
		return nil, err
	}
	if bracket != nil {
		if bracket.Published {
			return nil, ErrBracketLocked
		}
		if bracket.Mode == models.ModeElimination && len(bracket.Rounds) > 0 {
			return nil, ErrModeConflict
		}
	} else {
		bracket = &models.Bracket{
			ID:         uuid.NewString(),
			EventID:    eventID,
			CategoryID: categoryID,
			CreatedAt:  time.Now().UTC(),
		}
	}

	key := fmt.Sprintf("draws/%s/%s/%s%s", eventID, categoryID, uuid.NewString(), extensionFor(contentType))
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media draw: %w", err)
	}

	// Replacing an existing image: best effort cleanup of the old key.
	if bracket.MediaKey != nil && *bracket.MediaKey != result.Key {
		if err := s.uploader.Delete(ctx, *bracket.MediaKey); err != nil {
			s.logger.Warn("failed to delete previous media draw",
				slog.String("key", *bracket.MediaKey),
				slog.Any("error", err))
		}
	}

	bracket.Mode = models.ModeMedia
	bracket.MediaKey = &result.Key
	location := result.Location
	bracket.MediaURL = &location

	if err := s.bracketRepo.Upsert(ctx, s.db, bracket); err != nil {
		return nil, err
	}
	s.hub.BroadcastToRoom(brackets.RoomKey(eventID, categoryID), brackets.MessageBracketUpdated, bracket)
	return bracket, nil
}

func (s *mediaService) DeleteDraw(ctx context.Context, eventID, categoryID string) (*models.Bracket, error) {
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
	if bracket.Mode != models.ModeMedia || bracket.MediaKey == nil {
		return nil, ErrNotMediaDraw
	}

	if err := s.uploader.Delete(ctx, *bracket.MediaKey); err != nil {
		return nil, fmt.Errorf("failed to delete media draw object: %w", err)
	}

	// The category reverts to a clean slate; a bracket can be generated
	// again afterwards.
	bracket.Mode = models.ModeElimination
	bracket.MediaKey = nil
	bracket.MediaURL = nil
	if err := s.bracketRepo.Upsert(ctx, s.db, bracket); err != nil {
		return nil, err
	}
	s.hub.BroadcastToRoom(brackets.RoomKey(eventID, categoryID), brackets.MessageBracketUpdated, bracket)
	return bracket, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	}
	return ""
}
