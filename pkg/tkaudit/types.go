package tkaudit

import (
	"github.com/tetraklein/tkaudit/internal/tkaudit/air"
	"github.com/tetraklein/tkaudit/internal/tkaudit/audit"
	"github.com/tetraklein/tkaudit/internal/tkaudit/budget"
	"github.com/tetraklein/tkaudit/internal/tkaudit/config"
	"github.com/tetraklein/tkaudit/internal/tkaudit/envprobe"
	"github.com/tetraklein/tkaudit/internal/tkaudit/fri"
	"github.com/tetraklein/tkaudit/internal/tkaudit/ivc"
	"github.com/tetraklein/tkaudit/internal/tkaudit/spectral"
	"github.com/tetraklein/tkaudit/internal/tkaudit/stability"
	"github.com/tetraklein/tkaudit/internal/tkaudit/trace"
)

// Re-export data-model types.
type (
	Trace            = trace.Trace
	State            = trace.State
	Rule             = trace.Rule
	DampedKinematic  = trace.DampedKinematic
	Schema           = air.Schema
	Constraint       = air.Constraint
	ConstraintFamily = air.Family
	DegreeReport     = air.DegreeReport
	DomainParameters = fri.DomainParameters
	Sizer            = fri.Sizer
	QueryModel       = fri.QueryModel
	FoldStep         = ivc.FoldStep
	FoldingSchedule  = ivc.FoldingSchedule
	FoldingVerdict   = ivc.FoldingVerdict
	SpectrumReport   = spectral.SpectrumReport
	Augmenter        = spectral.Augmenter
	StabilityVerdict = stability.StabilityVerdict
	DriftVerdict     = stability.DriftVerdict
	PerOpCost        = budget.PerOpCost
	BudgetVerdict    = budget.BudgetVerdict
	EpochVerdict     = budget.EpochVerdict
	AuditRecord      = audit.Record
	AuditEntry       = audit.Entry
	Pipeline         = audit.Pipeline
	Goal             = audit.Goal
	GoalResult       = audit.GoalResult
	RunState         = audit.RunState
	Config           = config.Config
	EnvSnapshot      = envprobe.Snapshot
)

// Re-export constructors and operations.
var (
	Generate           = trace.Generate
	GenerateBatch      = trace.GenerateBatch
	NewDampedKinematic = trace.NewDampedKinematic
	NewSchema          = air.NewSchema
	Analyze            = air.Analyze
	StandardFamilies   = air.StandardFamilies
	NewSizer           = fri.NewSizer
	NewFoldingChecker  = ivc.NewChecker
	RecursionLevels    = ivc.RecursionLevels
	Spectrum           = spectral.Spectrum
	AugmentedSpectrum  = spectral.AugmentedSpectrum
	GapCurve           = spectral.GapCurve
	CheckContraction   = stability.CheckContraction
	CheckDrift         = stability.CheckDrift
	NewEstimator       = budget.NewEstimator
	CheckEpoch         = budget.CheckEpoch
	NewPipeline        = audit.NewPipeline
	DefaultGoals       = audit.DefaultGoals
	WithLogger         = audit.WithLogger
	WithMetrics        = audit.WithMetrics
	DefaultConfig      = config.DefaultConfig
	Probe              = envprobe.Probe
)

// Verdict values.
const (
	VerdictOK   = audit.VerdictOK
	VerdictFail = audit.VerdictFail
)

// Version is the tkaudit release version.
const Version = "0.3.0"
