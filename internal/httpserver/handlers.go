package httpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atelierlab/groundfinder/internal/analysis"
	"github.com/atelierlab/groundfinder/internal/colorspace"
	"github.com/atelierlab/groundfinder/internal/ground"
	"github.com/atelierlab/groundfinder/internal/imaging"
	"github.com/atelierlab/groundfinder/internal/mask"
	"github.com/atelierlab/groundfinder/internal/palette"
	"github.com/atelierlab/groundfinder/internal/render"
	"github.com/atelierlab/groundfinder/internal/summary"
)

const maxUploadBytes = 32 << 20

type clusterCenter struct {
	Lab [3]float32 `json:"lab"`
	Lch [3]float32 `json:"lch"`
}

type clusterSummary struct {
	Rank       int           `json:"rank"`
	PixelCount int           `json:"pixelCount"`
	Percentage float64       `json:"percentage"`
	Center     clusterCenter `json:"center"`
}

type valueModeSummary struct {
	PeakBin  int `json:"peakBin"`
	LowerBin int `json:"lowerBin"`
	UpperBin int `json:"upperBin"`
}

type colorSwatch struct {
	Hex         string     `json:"hex"`
	RGB         [3]uint8   `json:"rgb"`
	Lab         [3]float32 `json:"lab"`
	Lch         [3]float32 `json:"lch"`
	Temperature string     `json:"temperature"`
}

type paletteMatch struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Hex    string     `json:"hex"`
	RGB    [3]uint8   `json:"rgb"`
	Lab    [3]float32 `json:"lab"`
	Lch    [3]float32 `json:"lch"`
	DeltaE float64    `json:"deltaE"`
	Recipe string     `json:"recipe"`
	Notes  string     `json:"notes"`
}

type groundSuggestion struct {
	ValueStep  int            `json:"valueStep"`
	ValueLabel string         `json:"valueLabel"`
	Coverage   float64        `json:"coverage"`
	Color      colorSwatch    `json:"color"`
	Matches    []paletteMatch `json:"paletteMatches"`
}

type analyzeResponse struct {
	AnalysisID          string             `json:"analysisId"`
	OriginalSize        [2]int             `json:"originalSize"`
	AnalysisSize        [2]int             `json:"analysisSize"`
	DownscaleRatio      float64            `json:"downscaleRatio"`
	ValueHistogram      []int64            `json:"valueHistogram"`
	HueHistogram        []int64            `json:"hueHistogram"`
	TemperatureCounts   map[string]int     `json:"temperatureCounts"`
	Clusters            []clusterSummary   `json:"clusters"`
	ValueMode           valueModeSummary   `json:"valueMode"`
	DetectedGroundIndex *int               `json:"detectedGroundIndex"`
	TemperatureDefaults map[string]float64 `json:"temperatureDefaults"`
	GroundSuggestions   []groundSuggestion `json:"groundSuggestions"`
}

// handleAnalyze accepts a multipart image upload, runs the pipeline and
// stores the result under a fresh id.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return fmt.Errorf("%w: %v", imaging.ErrDecode, err)
	}
	// The decoder is the gate: clients routinely send generic part
	// content types for valid images, so only the bytes are judged.
	file, _, err := r.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: missing file field", imaging.ErrDecode)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	res, err := analysis.Analyze(data, s.opts)
	if err != nil {
		return err
	}
	s.store.Put(res)

	peak, lower, upper := summary.FindValueMode(res.ValueHist)
	warm, cool, neutral := summary.TemperatureCounts(res.Temperature)

	total := res.PixelCount()
	clusters := make([]clusterSummary, len(res.Clusters))
	for i, c := range res.Clusters {
		pct := 0.0
		if total > 0 {
			pct = float64(c.PixelCount) / float64(total)
		}
		clusters[i] = clusterSummary{
			Rank:       c.Rank,
			PixelCount: c.PixelCount,
			Percentage: pct,
			Center:     clusterCenter{Lab: c.CenterLab, Lch: c.CenterLch},
		}
	}

	var detected *int
	if rank, ok := ground.DetectCluster(res, s.window); ok {
		detected = &rank
	}

	resp := analyzeResponse{
		AnalysisID:     res.ID,
		OriginalSize:   [2]int{res.Original.Bounds().Dy(), res.Original.Bounds().Dx()},
		AnalysisSize:   [2]int{res.Height, res.Width},
		DownscaleRatio: res.DownscaleRatio,
		ValueHistogram: res.ValueHist,
		HueHistogram:   res.HueHist,
		TemperatureCounts: map[string]int{
			"warm": warm, "cool": cool, "neutral": neutral,
		},
		Clusters:            clusters,
		ValueMode:           valueModeSummary{PeakBin: peak, LowerBin: lower, UpperBin: upper},
		DetectedGroundIndex: detected,
		TemperatureDefaults: map[string]float64{
			"warmSpan":      float64(s.opts.WarmSpan),
			"neutralChroma": float64(s.opts.NeutralChroma),
		},
		GroundSuggestions: toSuggestions(analysis.GroundSuggestions(res, s.palette, 3)),
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func toSuggestions(in []analysis.Suggestion) []groundSuggestion {
	out := make([]groundSuggestion, len(in))
	for i, sg := range in {
		out[i] = groundSuggestion{
			ValueStep:  sg.ValueStep,
			ValueLabel: sg.ValueLabel,
			Coverage:   sg.Coverage,
			Color: colorSwatch{
				Hex:         sg.Hex,
				RGB:         sg.RGB,
				Lab:         sg.Lab,
				Lch:         sg.Lch,
				Temperature: sg.Temperature,
			},
			Matches: toMatches(sg.Matches),
		}
	}
	return out
}

func toMatches(in []palette.Match) []paletteMatch {
	out := make([]paletteMatch, len(in))
	for i, m := range in {
		out[i] = paletteMatch{
			ID:     m.ID,
			Name:   m.Name,
			Hex:    m.Hex,
			RGB:    m.RGB,
			Lab:    m.Lab,
			Lch:    m.Lch,
			DeltaE: m.DeltaE,
			Recipe: m.Recipe,
			Notes:  m.Notes,
		}
	}
	return out
}

type maskRequest struct {
	AnalysisID          string      `json:"analysisId"`
	Mode                string      `json:"mode"`
	ValueRange          *[2]int     `json:"valueRange"`
	Hue                 *float64    `json:"hue"`
	HueTolerance        *float64    `json:"hueTolerance"`
	ClusterRankIndex    *int        `json:"clusterRankIndex"`
	TemperatureCategory string      `json:"temperatureCategory"`
	GroundLab           *[3]float32 `json:"groundLab"`
	GroundTolerance     *float64    `json:"groundTolerance"`
	Views               []string    `json:"views"`
	Upscale             *bool       `json:"upscale"`
}

// params forwards the optional fields untouched: absent tolerances pick
// up the mask package defaults, explicit values pass through as sent.
func (m *maskRequest) params() mask.Params {
	return mask.Params{
		ValueRange:      m.ValueRange,
		Hue:             m.Hue,
		HueTolerance:    m.HueTolerance,
		ClusterRank:     m.ClusterRankIndex,
		Temperature:     m.TemperatureCategory,
		GroundLab:       m.GroundLab,
		GroundTolerance: m.GroundTolerance,
	}
}

type maskResponse struct {
	AnalysisID string            `json:"analysisId"`
	Mode       string            `json:"mode"`
	Payload    map[string]string `json:"payload"`
}

// handleMask generates a mask and renders the requested views.
func (s *Server) handleMask(w http.ResponseWriter, r *http.Request) error {
	var req maskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	res, err := s.store.Get(req.AnalysisID)
	if err != nil {
		return err
	}

	m, err := mask.Generate(res, req.Mode, req.params())
	if err != nil {
		return err
	}

	views := req.Views
	if len(views) == 0 {
		views = render.DefaultViews
	}
	upscale := true
	if req.Upscale != nil {
		upscale = *req.Upscale
	}
	payload, err := render.Views(res, m, views, upscale)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, maskResponse{
		AnalysisID: req.AnalysisID,
		Mode:       req.Mode,
		Payload:    payload,
	})
	return nil
}

type groundInsideRequest struct {
	AnalysisID       string      `json:"analysisId"`
	GroundSource     string      `json:"groundSource"`
	ClusterRankIndex *int        `json:"clusterRankIndex"`
	GroundLab        *[3]float32 `json:"groundLab"`
	GroundTolerance  *float64    `json:"groundTolerance"`
}

type groundInsideResponse struct {
	AnalysisID string  `json:"analysisId"`
	Highlight  string  `json:"highlight"`
	Coverage   float64 `json:"coverage"`
	Pixels     int     `json:"pixels"`
}

// handleGroundInside builds a ground mask from the requested source and
// refines it to the region enclosed by drawn forms.
func (s *Server) handleGroundInside(w http.ResponseWriter, r *http.Request) error {
	var req groundInsideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	res, err := s.store.Get(req.AnalysisID)
	if err != nil {
		return err
	}

	tolerance := ground.DefaultClusterTolerance
	if req.GroundTolerance != nil {
		tolerance = *req.GroundTolerance
	}

	var groundMask *mask.Mask
	source := req.GroundSource
	if source == "" {
		source = "detected"
	}
	switch source {
	case "detected":
		rank, ok := ground.DetectCluster(res, s.window)
		if !ok {
			return ground.ErrNoCluster
		}
		groundMask, err = ground.MaskFromCluster(res, rank, tolerance)
	case "cluster":
		if req.ClusterRankIndex == nil {
			return &mask.MissingParameterError{Param: "clusterRankIndex"}
		}
		groundMask, err = ground.MaskFromCluster(res, *req.ClusterRankIndex, tolerance)
	case "lab":
		if req.GroundLab == nil {
			return &mask.MissingParameterError{Param: "groundLab"}
		}
		groundMask = mask.FromLabDistance(res, *req.GroundLab, tolerance)
	default:
		return fmt.Errorf("%w: unknown groundSource %q", errBadRequest, source)
	}
	if err != nil {
		return err
	}

	inside := ground.InsideForms(res, groundMask)
	payload, err := render.Views(res, inside, []string{render.ViewHighlight}, true)
	if err != nil {
		return err
	}
	cov := ground.Summarize(inside)
	writeJSON(w, http.StatusOK, groundInsideResponse{
		AnalysisID: req.AnalysisID,
		Highlight:  payload[render.ViewHighlight],
		Coverage:   cov.Fraction,
		Pixels:     cov.Pixels,
	})
	return nil
}

type exportResponse struct {
	AnalysisID string         `json:"analysisId"`
	Highlight  string         `json:"highlight"`
	Wash       string         `json:"wash"`
	Extract    string         `json:"extract"`
	Summary    map[string]any `json:"summary"`
}

// handleExport renders all three views at full resolution along with a
// summary of the parameters used.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) error {
	var req maskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	res, err := s.store.Get(req.AnalysisID)
	if err != nil {
		return err
	}

	m, err := mask.Generate(res, req.Mode, req.params())
	if err != nil {
		return err
	}
	payload, err := render.Views(res, m, render.DefaultViews, true)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, exportResponse{
		AnalysisID: req.AnalysisID,
		Highlight:  payload[render.ViewHighlight],
		Wash:       payload[render.ViewWash],
		Extract:    payload[render.ViewExtract],
		Summary: map[string]any{
			"mode":                req.Mode,
			"valueRange":          req.ValueRange,
			"hue":                 req.Hue,
			"hueTolerance":        req.HueTolerance,
			"clusterRankIndex":    req.ClusterRankIndex,
			"temperatureCategory": req.TemperatureCategory,
			"groundTolerance":     req.GroundTolerance,
			"imageSize": [2]int{
				res.Original.Bounds().Dy(),
				res.Original.Bounds().Dx(),
			},
		},
	})
	return nil
}

type matchColorRequest struct {
	RGB [3]int `json:"rgb"`
}

type matchColorResponse struct {
	Color   colorSwatch    `json:"color"`
	Matches []paletteMatch `json:"paletteMatches"`
}

// handleMatchColor converts a single RGB color and matches it against
// the palette.
func (s *Server) handleMatchColor(w http.ResponseWriter, r *http.Request) error {
	var req matchColorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	var rgb [3]uint8
	for i, v := range req.RGB {
		if v < 0 || v > 255 {
			return fmt.Errorf("%w: rgb channels must be 0-255", errBadRequest)
		}
		rgb[i] = uint8(v)
	}

	lab := colorspace.RGBToLab(rgb[:])
	lch := colorspace.LabToLch(lab)
	temp := summary.ClassifyTemperature(lch, s.opts.WarmSpan, s.opts.NeutralChroma)

	label := "neutral"
	switch temp[0] {
	case summary.TemperatureWarm:
		label = "warm"
	case summary.TemperatureCool:
		label = "cool"
	}

	labTriple := [3]float32{lab[0], lab[1], lab[2]}
	writeJSON(w, http.StatusOK, matchColorResponse{
		Color: colorSwatch{
			Hex:         colorspace.RGBToHex(rgb[0], rgb[1], rgb[2]),
			RGB:         rgb,
			Lab:         labTriple,
			Lch:         [3]float32{lch[0], lch[1], lch[2]},
			Temperature: label,
		},
		Matches: toMatches(s.palette.Match(labTriple, 3)),
	})
	return nil
}

// handleDelete evicts a stored analysis.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) error {
	s.store.Remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
	return nil
}
