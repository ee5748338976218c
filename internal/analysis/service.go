// Package analysis orchestrates the full pipeline: resolve an address,
// gather source snapshots, score, plan equipment, project financials,
// persist, publish, and redact per entitlement.
package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/washlytics/siteiq/internal/event"
	"github.com/washlytics/siteiq/internal/fetch"
	"github.com/washlytics/siteiq/internal/model"
	"github.com/washlytics/siteiq/internal/report"
	"github.com/washlytics/siteiq/internal/scoring"
	"github.com/washlytics/siteiq/internal/store"
	"github.com/washlytics/siteiq/internal/tier"
	"github.com/washlytics/siteiq/pkg/geocode"
)

// ErrAddressNotFound is returned when geocoding cannot resolve the address.
var ErrAddressNotFound = eris.New("analysis: address not found")

// Service runs the analysis pipeline. All collaborators are injected.
type Service struct {
	geocoder  geocode.Client
	fetchers  *fetch.Fetchers
	engine    *scoring.Engine
	advisor   *scoring.Advisor
	policy    *tier.Policy
	store     store.Store
	publisher event.Publisher
	renderer  *report.Renderer

	now func() time.Time
}

// Config wires a Service.
type Config struct {
	Geocoder  geocode.Client
	Fetchers  *fetch.Fetchers
	Policy    *tier.Policy
	Store     store.Store
	Publisher event.Publisher
}

func NewService(cfg Config) *Service {
	policy := cfg.Policy
	if policy == nil {
		policy = tier.NewPolicy()
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &Service{
		geocoder:  cfg.Geocoder,
		fetchers:  cfg.Fetchers,
		engine:    scoring.NewEngine(),
		advisor:   scoring.NewAdvisor(),
		policy:    policy,
		store:     cfg.Store,
		publisher: publisher,
		renderer:  report.NewRenderer(),
		now:       time.Now,
	}
}

// GenerateRequest describes one analysis request. TierKey takes precedence
// when set; otherwise the tier is resolved from DepthLevel. PayingTierKey,
// when set, caps the entitlement at the caller's paid tier: redaction uses
// whichever of the requested and paying tiers sits at the lower depth.
// Callers that leave it empty are trusted to request only what they paid for.
type GenerateRequest struct {
	Address       string
	DepthLevel    int
	TierKey       string
	PayingTierKey string
	UserID        string
}

// GenerateResult pairs the persisted analysis with the entitlement-redacted
// preview for the requested tier.
type GenerateResult struct {
	Analysis *model.LocationAnalysis
	Preview  *model.PreviewReport
}

// Generate runs the full pipeline for one address. Entitlement validation
// happens before any provider call; a failed geocode aborts the pipeline
// with ErrAddressNotFound and persists nothing.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	entitled, err := s.resolveTier(req)
	if err != nil {
		return nil, err
	}

	loc, err := s.resolveLocation(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	results := s.fetchers.RunAll(ctx, loc)

	score := s.engine.Score(results.Demographics, results.Competition, results.RealEstate, results.Traffic)
	plan := s.advisor.Recommend(results.Demographics)
	projection := scoring.Project(results.Demographics, score, plan)

	a := &model.LocationAnalysis{
		AnalysisID:   uuid.New().String(),
		AnalysisType: entitled.Key,
		Location:     loc,
		Demographics: results.Demographics,
		Competition:  results.Competition,
		RealEstate:   results.RealEstate,
		Traffic:      results.Traffic,
		Score:        score,
		Equipment:    plan,
		Financials:   projection,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.store.SaveAnalysis(ctx, a, req.UserID); err != nil {
		return nil, eris.Wrapf(err, "analysis: persist %s", a.AnalysisID)
	}

	if err := s.publisher.Publish(ctx, event.AnalysisCompleted{
		AnalysisID: a.AnalysisID,
		Address:    a.Location.Address,
		Grade:      a.Score.Grade,
		Score:      a.Score.TotalScore,
		Timestamp:  a.CreatedAt,
	}); err != nil {
		// events are best effort; the analysis already succeeded
		zap.L().Warn("analysis: publish event failed",
			zap.String("analysis_id", a.AnalysisID),
			zap.Error(err),
		)
	}

	zap.L().Info("analysis: generated",
		zap.String("analysis_id", a.AnalysisID),
		zap.String("address", a.Location.Address),
		zap.String("grade", a.Score.Grade),
		zap.Float64("score", a.Score.TotalScore),
		zap.Bool("estimated", a.Estimated()),
	)

	preview := s.policy.Redact(tier.BuildPreview(a, entitled), entitled)
	return &GenerateResult{Analysis: a, Preview: preview}, nil
}

// resolveLocation geocodes the request address. The returned location's
// Address is the provider's canonical form, which is also what cache keys
// are derived from.
func (s *Service) resolveLocation(ctx context.Context, address string) (model.ResolvedLocation, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return model.ResolvedLocation{}, eris.Wrap(ErrAddressNotFound, "empty address")
	}

	res, err := s.geocoder.Resolve(ctx, address)
	if err != nil {
		if eris.Is(err, geocode.ErrLocationNotFound) {
			return model.ResolvedLocation{}, eris.Wrapf(ErrAddressNotFound, "%q", address)
		}
		return model.ResolvedLocation{}, eris.Wrapf(err, "analysis: resolve %q", address)
	}

	loc := model.ResolvedLocation{
		Address:     res.FormattedAddress,
		Coordinates: model.Coordinates{Lat: res.Latitude, Lng: res.Longitude},
		PlaceID:     res.PlaceID,
		Source:      res.Source,
	}
	if loc.Address == "" {
		loc.Address = address
	}
	return loc, nil
}

func (s *Service) resolveTier(req GenerateRequest) (tier.Tier, error) {
	requested, err := s.requestedTier(req)
	if err != nil {
		return tier.Tier{}, err
	}
	if req.PayingTierKey == "" {
		return requested, nil
	}
	paying, err := s.policy.ByKey(req.PayingTierKey)
	if err != nil {
		return tier.Tier{}, err
	}
	if paying.DepthLevel < requested.DepthLevel {
		return paying, nil
	}
	return requested, nil
}

func (s *Service) requestedTier(req GenerateRequest) (tier.Tier, error) {
	if req.TierKey != "" {
		return s.policy.ByKey(req.TierKey)
	}
	if err := s.policy.ValidateDepth(req.DepthLevel); err != nil {
		return tier.Tier{}, err
	}
	return s.policy.ByDepth(req.DepthLevel)
}

// QuoteReuse prices a repeat request against the cached analysis for the
// (address, analysisType) key. The address is geocoded first so the lookup
// keys on the same canonical form Generate persisted, not on however the
// caller happened to spell it. Returns store.ErrNotFound when nothing is
// cached.
func (s *Service) QuoteReuse(ctx context.Context, address, analysisType, requesterID string) (*tier.Quote, error) {
	t, err := s.policy.ByKey(analysisType)
	if err != nil {
		return nil, err
	}

	loc, err := s.resolveLocation(ctx, address)
	if err != nil {
		return nil, err
	}

	entry, err := s.store.FindByKey(ctx, loc.Address, analysisType)
	if err != nil {
		return nil, err
	}

	ageDays := int(s.now().UTC().Sub(entry.GeneratedAt.UTC()).Hours() / 24)
	sameUser := requesterID != "" && requesterID == entry.OwnerID

	q := tier.ReusePrice(t.Price, ageDays, sameUser)
	return &q, nil
}

// RenderPDF renders the stored analysis as a PDF document.
func (s *Service) RenderPDF(ctx context.Context, analysisID string, user report.UserInfo) ([]byte, error) {
	a, err := s.store.GetAnalysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(a, user)
}
