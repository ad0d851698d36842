package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
	"github.com/secmon-lab/riskgraph/pkg/usecase"
	"github.com/secmon-lab/riskgraph/pkg/utils/errutil"
	"github.com/secmon-lab/riskgraph/pkg/utils/safe"
)

// maxRequestBody bounds JSON request bodies
const maxRequestBody = 1 << 20

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

// statusOf maps use case errors onto HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrAssetNotFound), errors.Is(err, usecase.ErrRiskNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrMissingInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest),
		errors.Is(err, usecase.ErrTooManyAssets),
		errors.Is(err, usecase.ErrInvalidMethodology):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerr.Wrap(errBadRequest, "id must be a positive integer", goerr.V("id", raw))
	}
	return id, nil
}

func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerr.Wrap(errBadRequest, "query parameter must be a positive integer", goerr.V(name, raw))
	}
	return id, nil
}

func checkIDCount(n int) error {
	if n > usecase.MaxNetworkMapAssets {
		return goerr.Wrap(usecase.ErrTooManyAssets, "too many ids in request",
			goerr.V("count", n), goerr.V("max", usecase.MaxNetworkMapAssets))
	}
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(errBadRequest, "invalid request body", goerr.V("error", err.Error()))
	}
	return nil
}

// riskContextFromQuery builds a RiskContext from query parameters. It returns nil
// when no context parameter is present.
func riskContextFromQuery(r *http.Request) (*model.RiskContext, error) {
	q := r.URL.Query()
	rc := model.RiskContext{
		IndustrySector:   q.Get("sector"),
		MarketConditions: q.Get("market"),
		RiskAppetite:     types.RiskAppetite(q.Get("appetite")),
		BusinessUnit:     q.Get("business_unit"),
	}
	if regs := q.Get("regulations"); regs != "" {
		for _, reg := range strings.Split(regs, ",") {
			if reg = strings.TrimSpace(reg); reg != "" {
				rc.RegulatoryEnvironment = append(rc.RegulatoryEnvironment, reg)
			}
		}
	}
	if !rc.RiskAppetite.IsValid() {
		return nil, goerr.Wrap(errBadRequest, "invalid risk appetite", goerr.V("appetite", rc.RiskAppetite))
	}

	if rc.IndustrySector == "" && rc.MarketConditions == "" && rc.RiskAppetite == "" &&
		rc.BusinessUnit == "" && len(rc.RegulatoryEnvironment) == 0 {
		return nil, nil
	}
	return &rc, nil
}

func (s *Server) dependencyGraphHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	depth := 0
	if raw := r.URL.Query().Get("depth"); raw != "" {
		depth, err = strconv.Atoi(raw)
		if err != nil {
			handleError(w, r, goerr.Wrap(errBadRequest, "depth must be an integer", goerr.V("depth", raw)))
			return
		}
	}
	depth = s.uc.Config().Traversal.ClampDepth(depth)

	graph, err := s.uc.Dependency.BuildDependencyGraph(r.Context(), id, depth)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, graph)
}

func (s *Server) riskMetricsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	metrics, err := s.uc.Dependency.CalculateRiskMetrics(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, metrics)
}

func (s *Server) impactHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	scenario := types.Scenario(r.URL.Query().Get("scenario"))
	if scenario == "" {
		scenario = types.ScenarioCompleteFailure
	}

	result, err := s.uc.Impact.AnalyzeImpactScenario(r.Context(), id, scenario)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) criticalityHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	score, err := s.uc.Criticality.ScoreAsset(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, score)
}

type networkMapRequest struct {
	AssetIDs []int64 `json:"asset_ids"`
}

func (s *Server) networkMapHandler(w http.ResponseWriter, r *http.Request) {
	var req networkMapRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := checkIDCount(len(req.AssetIDs)); err != nil {
		handleError(w, r, err)
		return
	}

	networkMap, err := s.uc.Impact.GetAssetNetworkMap(r.Context(), req.AssetIDs)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, networkMap)
}

func (s *Server) scoreHandler(w http.ResponseWriter, r *http.Request) {
	s.serveScore(w, r, false)
}

func (s *Server) residualHandler(w http.ResponseWriter, r *http.Request) {
	s.serveScore(w, r, true)
}

func (s *Server) serveScore(w http.ResponseWriter, r *http.Request, residual bool) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	riskCtx, err := riskContextFromQuery(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	method := types.Methodology(r.URL.Query().Get("method"))

	var score *model.RiskScore
	if residual {
		score, err = s.uc.Scoring.CalculateResidualRisk(r.Context(), id, method, riskCtx)
	} else {
		score, err = s.uc.Scoring.AssessRisk(r.Context(), id, method, riskCtx)
	}
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, score)
}

func (s *Server) compareHandler(w http.ResponseWriter, r *http.Request) {
	a, err := queryID(r, "a")
	if err != nil {
		handleError(w, r, err)
		return
	}
	b, err := queryID(r, "b")
	if err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.uc.Scoring.CompareRiskScores(r.Context(), a, b)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

type riskContextRequest struct {
	IndustrySector        string   `json:"industry_sector"`
	RegulatoryEnvironment []string `json:"regulatory_environment"`
	MarketConditions      string   `json:"market_conditions"`
	RiskAppetite          string   `json:"risk_appetite"`
	BusinessUnit          string   `json:"business_unit"`
}

type bulkScoreRequest struct {
	RiskIDs []int64             `json:"risk_ids"`
	Method  string              `json:"method"`
	Context *riskContextRequest `json:"context"`
}

type bulkScoreResponse struct {
	Scores []*model.RiskScore `json:"scores"`
}

func (s *Server) bulkScoreHandler(w http.ResponseWriter, r *http.Request) {
	var req bulkScoreRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := checkIDCount(len(req.RiskIDs)); err != nil {
		handleError(w, r, err)
		return
	}

	var riskCtx *model.RiskContext
	if c := req.Context; c != nil {
		appetite := types.RiskAppetite(c.RiskAppetite)
		if !appetite.IsValid() {
			handleError(w, r, goerr.Wrap(errBadRequest, "invalid risk appetite", goerr.V("appetite", c.RiskAppetite)))
			return
		}
		riskCtx = &model.RiskContext{
			IndustrySector:        c.IndustrySector,
			RegulatoryEnvironment: c.RegulatoryEnvironment,
			MarketConditions:      c.MarketConditions,
			RiskAppetite:          appetite,
			BusinessUnit:          c.BusinessUnit,
		}
	}

	scores, err := s.uc.Scoring.BulkAssessRisks(r.Context(), req.RiskIDs, types.Methodology(req.Method), riskCtx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if scores == nil {
		scores = []*model.RiskScore{}
	}
	writeJSON(w, r, http.StatusOK, bulkScoreResponse{Scores: scores})
}
