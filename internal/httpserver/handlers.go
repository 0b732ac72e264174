package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/catalog"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/go-chi/chi/v5"
)

var capacityParams = map[string]domain.Unit{
	"trays":  domain.UnitTray,
	"ports":  domain.UnitPort,
	"blocks": domain.UnitBlock,
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	req := app.NewRecommendRequest()
	var err error
	if req.Now, err = queryDate(r, "today"); err != nil {
		s.respondBadRequest(w, err)
		return
	}
	if req.Plan, err = queryBool(r, "plan"); err != nil {
		s.respondBadRequest(w, err)
		return
	}
	req.Category = domain.CropCategory(r.URL.Query().Get("category"))

	for param, unit := range capacityParams {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondBadRequest(w, fmt.Errorf("%s: want a non-negative integer, got %q", param, raw))
			return
		}
		if req.Capacity == nil {
			req.Capacity = make(map[domain.Unit]int)
		}
		req.Capacity[unit] = n
		req.Plan = true
	}

	resp, err := s.planning.Recommend(r.Context(), req)
	if err != nil {
		s.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRecommendDTO(resp))
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	now, err := queryDate(r, "today")
	if err != nil {
		s.respondBadRequest(w, err)
		return
	}
	resp, err := s.planning.Pipeline(r.Context(), app.PipelineRequest{
		Now:      now,
		Category: domain.CropCategory(r.URL.Query().Get("category")),
	})
	if err != nil {
		s.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPipelineResponseDTO(resp))
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	now, err := queryDate(r, "today")
	if err != nil {
		s.respondBadRequest(w, err)
		return
	}
	resp, err := s.planning.Board(r.Context(), app.BoardRequest{Now: now})
	if err != nil {
		s.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toBoardDTO(resp))
}

func (s *Server) handleYield(w http.ResponseWriter, r *http.Request) {
	resp, err := s.planning.YieldReport(r.Context(), app.YieldReportRequest{
		VarietyID: r.URL.Query().Get("variety"),
	})
	if err != nil {
		s.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"calibrations": toCalibrationDTOs(resp.Calibrations),
	})
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	req := app.ListBatchesRequest{
		VarietyID: r.URL.Query().Get("variety"),
		Category:  domain.CropCategory(r.URL.Query().Get("category")),
	}
	var err error
	if req.Now, err = queryDate(r, "today"); err != nil {
		s.respondBadRequest(w, err)
		return
	}
	if req.IncludeHarvested, err = queryBool(r, "all"); err != nil {
		s.respondBadRequest(w, err)
		return
	}
	views, err := s.batches.List(r.Context(), req)
	if err != nil {
		s.respondUseCaseError(w, r, err)
		return
	}
	out := make([]batchViewDTO, len(views))
	for i, v := range views {
		out[i] = toBatchViewDTO(v)
	}
	respondJSON(w, http.StatusOK, map[string]any{"batches": out})
}

func (s *Server) handlePlant(w http.ResponseWriter, r *http.Request) {
	var body plantBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.respondBadRequest(w, err)
		return
	}
	req := app.PlantRequest{
		VarietyID:          body.Variety,
		Quantity:           body.Quantity,
		Notes:              body.Notes,
		By:                 body.By,
		FromRecommendation: body.FromRecommendation,
	}
	var err error
	if req.SowDate, err = parseOptionalDate("sow_date", body.SowDate); err != nil {
		s.respondBadRequest(w, err)
		return
	}
	if req.Now, err = parseOptionalDate("today", body.Today); err != nil {
		s.respondBadRequest(w, err)
		return
	}

	b, err := s.batches.Plant(r.Context(), req)
	if err != nil {
		s.respondUseCaseError(w, r, err)
		return
	}
	w.Header().Set("Location", "/batches/"+b.ID)
	respondJSON(w, http.StatusCreated, toBatchDTO(*b))
}

func (s *Server) handleShowBatch(w http.ResponseWriter, r *http.Request) {
	view, err := s.batches.Show(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toBatchViewDTO(*view))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var body advanceBody
	if err := decodeOptionalJSON(w, r, &body); err != nil {
		s.respondBadRequest(w, err)
		return
	}
	now, err := parseOptionalDate("today", body.Today)
	if err != nil {
		s.respondBadRequest(w, err)
		return
	}
	resp, err := s.batches.Advance(r.Context(), app.AdvanceRequest{
		Now:     now,
		BatchID: chi.URLParam(r, "id"),
		By:      body.By,
	})
	if err != nil {
		s.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransitionDTO(resp))
}

func (s *Server) handleHarvest(w http.ResponseWriter, r *http.Request) {
	var body harvestBody
	if err := decodeOptionalJSON(w, r, &body); err != nil {
		s.respondBadRequest(w, err)
		return
	}
	now, err := parseOptionalDate("today", body.Today)
	if err != nil {
		s.respondBadRequest(w, err)
		return
	}
	resp, err := s.batches.Harvest(r.Context(), app.HarvestRequest{
		Now:     now,
		BatchID: chi.URLParam(r, "id"),
		Yield:   body.Yield,
		By:      body.By,
	})
	if err != nil {
		s.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransitionDTO(resp))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	req := app.ListOrdersRequest{}
	var err error
	if req.Since, err = queryDate(r, "since"); err != nil {
		s.respondBadRequest(w, err)
		return
	}
	for _, raw := range r.URL.Query()["status"] {
		for _, part := range strings.Split(raw, ",") {
			st := domain.OrderStatus(strings.ToLower(strings.TrimSpace(part)))
			if !domain.ValidOrderStatuses[st] {
				s.respondBadRequest(w, fmt.Errorf("unknown order status %q", part))
				return
			}
			req.Statuses = append(req.Statuses, st)
		}
	}
	orders, err := s.orders.List(r.Context(), req)
	if err != nil {
		s.respondUseCaseError(w, r, err)
		return
	}
	out := make([]orderDTO, len(orders))
	for i, o := range orders {
		out[i] = toOrderDTO(o)
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": out})
}

func (s *Server) handleRecordOrder(w http.ResponseWriter, r *http.Request) {
	var req app.RecordOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondBadRequest(w, err)
		return
	}
	o, err := s.orders.Record(r.Context(), req)
	if err != nil {
		s.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderDTO(o))
}

func (s *Server) handleImportOrders(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	res, err := s.orders.Import(r.Context(), body)
	if err != nil {
		s.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, importResultDTO{
		Imported: res.Imported,
		Items:    res.Items,
		Rejected: nonNil(res.Rejected),
	})
}

func (s *Server) handleVarieties(w http.ResponseWriter, r *http.Request) {
	category := domain.CropCategory(r.URL.Query().Get("category"))
	if category != "" && !category.IsValid() {
		s.respondBadRequest(w, fmt.Errorf("unknown category %q", category))
		return
	}
	out := []varietyDTO{}
	for _, v := range s.catalog.Varieties() {
		if category == "" || v.Category == category {
			out = append(out, toVarietyDTO(v))
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"varieties": out})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, ok := s.catalog.ResolveProduct(id)
	if !ok {
		respondError(w, http.StatusNotFound, app.ErrUnknownVariety, fmt.Sprintf("unknown variety %q", id))
		return
	}
	sow, err := queryDate(r, "sow_date")
	if err != nil {
		s.respondBadRequest(w, err)
		return
	}
	date := domain.DateOf(time.Now())
	if sow != nil {
		date = *sow
	}
	respondJSON(w, http.StatusOK, toScheduleDTO(v.ID, catalog.ScheduleFor(v, date)))
}

// decodeOptionalJSON accepts an empty body as the zero value.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	if err := decodeJSON(w, r, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
