package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoleague/match-center/models"
	"github.com/mcoleague/match-center/ocr"
	"github.com/mcoleague/match-center/repositories"
	"github.com/mcoleague/match-center/storage"
)

const (
	minRating = 0.0
	maxRating = 10.0
)

// ScoreDraft layers an optional manual override over the computed
// aggregate of one side. The computed value is never mutated, so
// re-editing entries cannot clobber a deliberate manual choice.
type ScoreDraft struct {
	Computed int  `json:"computed"`
	Override *int `json:"override,omitempty"`
}

func (d ScoreDraft) Final() int {
	if d.Override != nil {
		return *d.Override
	}
	return d.Computed
}

func (d *ScoreDraft) ApplyOverride(value int) {
	d.Override = &value
}

func (d *ScoreDraft) ClearOverride() {
	d.Override = nil
}

// SideReport is the draft for one side of the súmula: the extracted
// entries plus the names the roster lookup could not resolve.
type SideReport struct {
	Entries        []models.PerformanceEntry `json:"entries"`
	UnknownPlayers []string                  `json:"unknown_players"`
}

type PreviewScore struct {
	Mandante  int `json:"mandante"`
	Visitante int `json:"visitante"`
}

type ReportPreview struct {
	Mandante  SideReport   `json:"mandante"`
	Visitante SideReport   `json:"visitante"`
	Placar    PreviewScore `json:"placar"`
}

// ImageUpload is one score sheet image as received from the client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

type ConfirmReportInput struct {
	Mandante  []models.PerformanceEntry
	Visitante []models.PerformanceEntry
	// Nil placar means "use the value computed from the entries";
	// a non-nil value is a manual override and wins as-is.
	PlacarMandante  *int
	PlacarVisitante *int
}

type ReportService interface {
	// Preview uploads both score sheet images, runs the external OCR
	// extraction and returns editable drafts plus the provisional
	// score. The match state is not touched. While the match is
	// em_reclamacao the preview is evidence for the admin resolver
	// only: club confirmation is accepted only from confirmada.
	Preview(ctx context.Context, matchID, clubID int, homeImage, awayImage ImageUpload) (*ReportPreview, error)

	// Confirm validates the (possibly edited) entries and registers the
	// score, moving the match to placar_registrado. All-or-nothing.
	Confirm(ctx context.Context, matchID, clubID int, input ConfirmReportInput) (*models.Match, error)
}

type reportService struct {
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository
	matches    MatchService
	extractor  ocr.Extractor
	uploader   storage.FileUploader
	now        func() time.Time
}

func NewReportService(
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	matches MatchService,
	extractor ocr.Extractor,
	uploader storage.FileUploader,
) ReportService {
	return &reportService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		matches:    matches,
		extractor:  extractor,
		uploader:   uploader,
		now:        time.Now,
	}
}

func (s *reportService) Preview(ctx context.Context, matchID, clubID int, homeImage, awayImage ImageUpload) (*ReportPreview, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if _, ok := match.SideOf(clubID); !ok {
		return nil, ErrNotMatchClub
	}
	if match.State != models.StateConfirmada && match.State != models.StateEmReclamacao {
		return nil, ErrInvalidTransition
	}
	if homeImage.Reader == nil || awayImage.Reader == nil {
		return nil, ErrScoreImagesRequired
	}

	var homeExtraction, awayExtraction *ocr.Extraction
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		extraction, err := s.extractSide(gCtx, match.ID, models.SideMandante, homeImage)
		if err != nil {
			return err
		}
		homeExtraction = extraction
		return nil
	})
	g.Go(func() error {
		extraction, err := s.extractSide(gCtx, match.ID, models.SideVisitante, awayImage)
		if err != nil {
			return err
		}
		awayExtraction = extraction
		return nil
	})
	if err := g.Wait(); err != nil {
		// The match stays in its prior state; the caller retries preview.
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	homeReport, err := s.buildSideReport(ctx, match.ID, match.HomeClubID, models.SideMandante, homeExtraction)
	if err != nil {
		return nil, err
	}
	awayReport, err := s.buildSideReport(ctx, match.ID, match.AwayClubID, models.SideVisitante, awayExtraction)
	if err != nil {
		return nil, err
	}

	return &ReportPreview{
		Mandante:  homeReport,
		Visitante: awayReport,
		Placar: PreviewScore{
			Mandante:  ComputeSideScore(homeReport.Entries, homeExtraction.ReportedGoals),
			Visitante: ComputeSideScore(awayReport.Entries, awayExtraction.ReportedGoals),
		},
	}, nil
}

func (s *reportService) Confirm(ctx context.Context, matchID, clubID int, input ConfirmReportInput) (*models.Match, error) {
	homeEntries, err := FinalizeEntries(input.Mandante, models.SideMandante)
	if err != nil {
		return nil, err
	}
	awayEntries, err := FinalizeEntries(input.Visitante, models.SideVisitante)
	if err != nil {
		return nil, err
	}

	homeDraft := ScoreDraft{Computed: sumGoals(homeEntries)}
	if input.PlacarMandante != nil {
		homeDraft.ApplyOverride(*input.PlacarMandante)
	}
	awayDraft := ScoreDraft{Computed: sumGoals(awayEntries)}
	if input.PlacarVisitante != nil {
		awayDraft.ApplyOverride(*input.PlacarVisitante)
	}

	entries := append(homeEntries, awayEntries...)
	return s.matches.RegisterScore(ctx, matchID, clubID, homeDraft.Final(), awayDraft.Final(), entries)
}

func (s *reportService) extractSide(ctx context.Context, matchID int, side models.Side, image ImageUpload) (*ocr.Extraction, error) {
	contentType := image.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	key := fmt.Sprintf("matches/%d/sumula_%s_%d", matchID, side, s.now().UnixNano())
	uploaded, err := s.uploader.Upload(ctx, key, contentType, image.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to store %s score sheet: %w", side, err)
	}
	return s.extractor.ExtractReport(ctx, uploaded.Location)
}

func (s *reportService) buildSideReport(ctx context.Context, matchID, clubID int, side models.Side, extraction *ocr.Extraction) (SideReport, error) {
	roster, err := s.playerRepo.ListByClub(ctx, clubID)
	if err != nil {
		return SideReport{}, fmt.Errorf("failed to load roster for club %d: %w", clubID, err)
	}
	byName := make(map[string]models.Player, len(roster))
	for _, player := range roster {
		byName[normalizeName(player.Name)] = player
	}

	report := SideReport{
		Entries:        make([]models.PerformanceEntry, 0, len(extraction.Entries)),
		UnknownPlayers: make([]string, 0),
	}
	for _, raw := range extraction.Entries {
		entry := models.PerformanceEntry{
			MatchID:    matchID,
			Side:       side,
			PlayerName: raw.PlayerName,
			Rating:     raw.Rating,
			Goals:      raw.Goals,
			Assists:    raw.Assists,
		}
		if player, ok := byName[normalizeName(raw.PlayerName)]; ok {
			id := player.ID
			entry.PlayerID = &id
			entry.PlayerName = player.Name
		} else {
			report.UnknownPlayers = append(report.UnknownPlayers, raw.PlayerName)
		}
		report.Entries = append(report.Entries, entry)
	}
	return report, nil
}

func (s *reportService) loadMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	return match, nil
}

// ComputeSideScore derives one side's provisional score: goals summed
// over entries that actually played, plus the non-negative remainder of
// the aggregate the OCR read off the sheet that no named entry accounts
// for (own goals, unreadable lines).
func ComputeSideScore(entries []models.PerformanceEntry, reportedGoals int) int {
	attributable := sumGoals(entries)
	extra := reportedGoals - attributable
	if extra < 0 {
		extra = 0
	}
	return attributable + extra
}

// FinalizeEntries filters the draft down to entries that played and
// validates their stats. Invalid entries are reported together in a
// single error so the client can fix them in one pass.
func FinalizeEntries(drafts []models.PerformanceEntry, side models.Side) ([]models.PerformanceEntry, error) {
	finalized := make([]models.PerformanceEntry, 0, len(drafts))
	var offending []string
	for _, entry := range drafts {
		if !entry.Played() {
			continue
		}
		if *entry.Rating < minRating || *entry.Rating > maxRating ||
			entry.Goals < 0 || entry.Assists < 0 {
			offending = append(offending, entry.PlayerName)
			continue
		}
		entry.Side = side
		finalized = append(finalized, entry)
	}
	if len(offending) > 0 {
		return nil, fmt.Errorf("%w: invalid performance entries (%s): rating must be 0-10, goals and assists non-negative",
			ErrValidationFailed, strings.Join(offending, ", "))
	}
	return finalized, nil
}

func sumGoals(entries []models.PerformanceEntry) int {
	total := 0
	for _, entry := range entries {
		if entry.Played() {
			total += entry.Goals
		}
	}
	return total
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
