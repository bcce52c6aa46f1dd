package services

import (
	"context"
	"errors"

	"github.com/ciaa/ciaa-dashboard/model"
	"github.com/ciaa/ciaa-dashboard/util"
	"go.uber.org/zap"
)

// Messages shown when a detail page cannot be loaded.
const (
	IssueLoadFailed    = "Failed to load issue details. Please try again later."
	AnalysisLoadFailed = "Failed to load analysis details"
)

// LoadError carries a presentable message alongside the underlying failure.
type LoadError struct {
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IssueSource is the part of the backend client the detail pages need.
type IssueSource interface {
	GetIssue(ctx context.Context, id string) (model.IssueRecord, error)
	GetAnalysis(ctx context.Context, issueID string) (*model.AnalysisRecord, error)
}

// IssueService builds the issue and analysis detail pages.
type IssueService struct {
	Source IssueSource
	Logger *zap.Logger
}

// IssueDetail loads an issue and, independently, its analysis. A missing or failing
// analysis leaves Analysis nil; only a failing issue is an error.
func (s *IssueService) IssueDetail(ctx context.Context, id string) (model.IssueDetail, error) {
	issue, err := s.Source.GetIssue(ctx, id)
	if err != nil {
		s.logger().Error("error fetching issue details", zap.String("id", id), zap.Error(err))
		return model.IssueDetail{}, &LoadError{Message: IssueLoadFailed, Err: err}
	}

	detail := model.IssueDetail{
		Issue:              issue,
		SeverityLevel:      issue.SeverityLevel(),
		PublishedDisplay:   util.FormatDate(firstNonBlank(issue.PublicTime, issue.PublishTime, issue.ModifiedTime, issue.CreateTime)),
		LastUpdatedDisplay: util.FormatDate(issue.LastUpdatedTime),
	}

	analysis, err := s.Source.GetAnalysis(ctx, id)
	if err != nil {
		s.logger().Info("no analysis available for this issue", zap.String("id", id), zap.Error(err))
		return detail, nil
	}
	if analysis != nil {
		view := BuildAnalysisView(*analysis)
		detail.Analysis = &view
	}
	return detail, nil
}

// Analysis loads the analysis page on its own.
func (s *IssueService) Analysis(ctx context.Context, issueID string) (model.AnalysisView, error) {
	analysis, err := s.Source.GetAnalysis(ctx, issueID)
	if err == nil && analysis == nil {
		err = errNoAnalysis
	}
	if err != nil {
		s.logger().Error("error fetching analysis", zap.String("id", issueID), zap.Error(err))
		return model.AnalysisView{}, &LoadError{Message: AnalysisLoadFailed, Err: err}
	}
	return BuildAnalysisView(*analysis), nil
}

// errNoAnalysis is wrapped when an issue has no analysis.
var errNoAnalysis = errors.New("analysis not found")

// IsNoAnalysis reports whether err means the issue has no analysis.
func IsNoAnalysis(err error) bool {
	return errors.Is(err, errNoAnalysis)
}

// BuildAnalysisView prepares an analysis for display. A missing or out of range base
// score is derived from the CVSS vector.
func BuildAnalysisView(record model.AnalysisRecord) model.AnalysisView {
	score, ok := util.ResolveBaseScore(record.CVSSBaseScore.Value(), record.CVSSVectorString)

	record.CVSSAttackVector = util.OrNA(record.CVSSAttackVector)
	record.CVSSPrivilegeRequired = util.OrNA(record.CVSSPrivilegeRequired)
	record.CVSSUserInteraction = util.OrNA(record.CVSSUserInteraction)
	record.RootCauseTag = util.OrNA(record.RootCauseTag)

	return model.AnalysisView{
		AnalysisRecord:   record,
		BaseScoreDisplay: util.FormatScore(score, ok),
		SeverityRating:   util.SeverityRating(score, ok),
		UpdatedDisplay:   util.FormatDate(record.UpdatedAt),
	}
}

func (s *IssueService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
