package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/openhealthcare/openehr-api/internal/handler/choice"
	"github.com/openhealthcare/openehr-api/internal/handler/health"
	medicationHandler "github.com/openhealthcare/openehr-api/internal/handler/medication"
	"github.com/openhealthcare/openehr-api/internal/handler/prometheus"
	recordHandler "github.com/openhealthcare/openehr-api/internal/handler/record"
	"github.com/openhealthcare/openehr-api/internal/middleware"
	"github.com/openhealthcare/openehr-api/internal/model"
	"github.com/openhealthcare/openehr-api/internal/repository"
	"github.com/openhealthcare/openehr-api/internal/service"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Collection paths under /api/v1.
const (
	PathIdentifiers              = "identifiers"
	PathPersonNames              = "person-names"
	PathAddressDetails           = "address-details"
	PathTelecomDetails           = "telecom-details"
	PathDemographicPersonals     = "demographic-personals"
	PathDemographicProfessionals = "demographic-professionals"
	PathRelevantContacts         = "relevant-contacts"
	PathBodySites                = "body-sites"
	PathSymptomSigns             = "symptom-signs"
	PathAdverseReactions         = "adverse-reactions"
	PathProblemDiagnoses         = "problem-diagnoses"
	PathReasonsForEncounter      = "reasons-for-encounter"
	PathClinicalSynopses         = "clinical-synopses"
	PathInpatientAdmissions      = "inpatient-admissions"
	PathTherapeuticDirections    = "therapeutic-directions"
	PathDosages                  = "therapeutic-direction-dosages"
)

type Router struct {
	engine      *gin.Engine
	auth        *middleware.AuthMiddleware
	health      Handler
	choices     Handler
	medication  *medicationHandler.Handler
	records     []Handler
	prometheusH *prometheus.Handler
}

type RouterConfig struct {
	Timeout          time.Duration
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSConfig       middleware.CORSConfig
}

// NewRouter wires every handler. A nil auth leaves write routes open.
func NewRouter(
	services *service.Services,
	pinger repository.Pinger,
	prometheusH *prometheus.Handler,
	auth *middleware.AuthMiddleware,
	config RouterConfig,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:      engine,
		auth:        auth,
		health:      health.NewHandler(pinger),
		choices:     choice.NewHandler(),
		medication:  medicationHandler.NewHandler(services.Medication),
		prometheusH: prometheusH,
		records: []Handler{
			recordHandler.NewHandler[*model.Identifier](services.Identifiers, PathIdentifiers),
			recordHandler.NewHandler[*model.PersonName](services.PersonNames, PathPersonNames),
			recordHandler.NewHandler[*model.AddressDetails](services.AddressDetails, PathAddressDetails),
			recordHandler.NewHandler[*model.TelecomDetails](services.TelecomDetails, PathTelecomDetails),
			recordHandler.NewHandler[*model.DemographicPersonal](services.DemographicPersonals, PathDemographicPersonals),
			recordHandler.NewHandler[*model.DemographicProfessional](services.DemographicProfessionals, PathDemographicProfessionals),
			recordHandler.NewHandler[*model.RelevantContact](services.RelevantContacts, PathRelevantContacts),
			recordHandler.NewHandler[*model.BodySite](services.BodySites, PathBodySites),
			recordHandler.NewHandler[*model.SymptomSign](services.SymptomSigns, PathSymptomSigns),
			recordHandler.NewHandler[*model.AdverseReaction](services.AdverseReactions, PathAdverseReactions),
			recordHandler.NewHandler[*model.ProblemDiagnosis](services.ProblemDiagnoses, PathProblemDiagnoses),
			recordHandler.NewHandler[*model.ReasonForEncounter](services.ReasonsForEncounter, PathReasonsForEncounter),
			recordHandler.NewHandler[*model.ClinicalSynopsis](services.ClinicalSynopses, PathClinicalSynopses),
			recordHandler.NewHandler[*model.InpatientAdmission](services.InpatientAdmissions, PathInpatientAdmissions),
			recordHandler.NewHandler[*model.TherapeuticDirection](services.TherapeuticDirections, PathTherapeuticDirections),
			recordHandler.NewHandler[*model.TherapeuticDirectionDosage](services.Dosages, PathDosages),
		},
	}

	timeout := middleware.DefaultTimeoutConfig()
	if config.Timeout > 0 {
		timeout.Duration = config.Timeout
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		prometheusH.Middleware(),
		middleware.ErrorHandler(),
		middleware.Timeout(timeout),
		middleware.CORS(config.CORSConfig),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig()),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", r.prometheusH.Handler())

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.health.RegisterRoutes(api)
	r.choices.RegisterRoutes(api)

	records := api.Group("")
	if r.auth != nil {
		records.Use(r.auth.AuthenticateWrites())
	}
	for _, h := range r.records {
		h.RegisterRoutes(records)
	}
	r.medication.RegisterRoutes(records.Group("/" + PathTherapeuticDirections))
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
