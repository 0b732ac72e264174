package httpserver

import (
	"time"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/board"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/lifecycle"
	"github.com/alexanderramin/furrow/internal/sowing"
)

// Wire types. Calendar dates are YYYY-MM-DD strings; instants are RFC 3339.

type needDTO struct {
	CropID              string   `json:"crop_id"`
	CropName            string   `json:"crop_name"`
	Category            string   `json:"category"`
	WeeklyDemand        float64  `json:"weekly_demand"`
	CurrentPipeline     int      `json:"current_pipeline"`
	DaysOfSupply        float64  `json:"days_of_supply"`
	DisplayDaysOfSupply int      `json:"display_days_of_supply"`
	Urgency             string   `json:"urgency"`
	RecommendedQty      int      `json:"recommended_qty"`
	BatchUnit           string   `json:"batch_unit"`
	GrowDays            int      `json:"grow_days"`
	Reason              string   `json:"reason"`
	YieldPerUnit        float64  `json:"yield_per_unit"`
	YieldUnit           string   `json:"yield_unit"`
	PlantingDays        []string `json:"planting_days"`
	EstimatedSeedCost   string   `json:"estimated_seed_cost"`
}

type allocationDTO struct {
	CropID    string `json:"crop_id"`
	Allocated int    `json:"allocated"`
	Partial   bool   `json:"partial"`
}

type blockerDTO struct {
	CropID  string `json:"crop_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type recommendDTO struct {
	GeneratedAt       time.Time       `json:"generated_at"`
	LookbackWeeks     int             `json:"lookback_weeks"`
	TargetDays        float64         `json:"target_days"`
	Needs             []needDTO       `json:"needs"`
	Allocations       []allocationDTO `json:"allocations,omitempty"`
	Blockers          []blockerDTO    `json:"blockers,omitempty"`
	UnmatchedProducts []string        `json:"unmatched_products"`
	Warnings          []string        `json:"warnings"`
}

type stageEntryDTO struct {
	Stage     string    `json:"stage"`
	EnteredAt time.Time `json:"entered_at"`
	By        string    `json:"by"`
}

type batchDTO struct {
	ID                    string          `json:"id"`
	Category              string          `json:"category"`
	VarietyID             string          `json:"variety_id"`
	VarietyName           string          `json:"variety_name"`
	Quantity              int             `json:"quantity"`
	Unit                  string          `json:"unit"`
	Stage                 string          `json:"stage"`
	Source                string          `json:"source"`
	Notes                 string          `json:"notes,omitempty"`
	SowDate               string          `json:"sow_date"`
	SoakDate              string          `json:"soak_date,omitempty"`
	UncoverDate           string          `json:"uncover_date,omitempty"`
	EstimatedHarvestStart string          `json:"estimated_harvest_start,omitempty"`
	EstimatedHarvestEnd   string          `json:"estimated_harvest_end,omitempty"`
	StageHistory          []stageEntryDTO `json:"stage_history"`
	HarvestedAt           *time.Time      `json:"harvested_at,omitempty"`
	HarvestYield          *float64        `json:"harvest_yield,omitempty"`
	ExpectedYield         float64         `json:"expected_yield"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

type advisoryDTO struct {
	NextStage          string `json:"next_stage,omitempty"`
	DueDate            string `json:"due_date,omitempty"`
	NeedsAdvance       bool   `json:"needs_advance"`
	IsOverdue          bool   `json:"is_overdue"`
	DaysInCurrentStage int    `json:"days_in_current_stage"`
	ExpectedDays       int    `json:"expected_days"`
}

type windowDTO struct {
	InWindow      bool `json:"in_window"`
	DaysInWindow  int  `json:"days_in_window"`
	DaysRemaining int  `json:"days_remaining"`
	IsUrgent      bool `json:"is_urgent"`
}

type batchViewDTO struct {
	Batch         batchDTO     `json:"batch"`
	StageLabel    string       `json:"stage_label"`
	Advisory      *advisoryDTO `json:"advisory,omitempty"`
	HarvestWindow windowDTO    `json:"harvest_window"`
	YieldAccuracy *int         `json:"yield_accuracy,omitempty"`
}

type transitionDTO struct {
	Batch     batchDTO `json:"batch"`
	FromStage string   `json:"from_stage"`
	ToStage   string   `json:"to_stage"`
	EventErr  string   `json:"event_error,omitempty"`
}

type stageCountDTO struct {
	Count int `json:"count"`
	Units int `json:"units"`
}

type pipelineDTO struct {
	CropID          string                   `json:"crop_id"`
	Category        string                   `json:"category"`
	CurrentPipeline int                      `json:"current_pipeline"`
	ByStage         map[string]stageCountDTO `json:"by_stage"`
}

type funnelStageDTO struct {
	Stage string `json:"stage"`
	Label string `json:"label"`
	stageCountDTO
}

type funnelDTO struct {
	Category string           `json:"category"`
	Label    string           `json:"label"`
	Unit     string           `json:"unit"`
	Stages   []funnelStageDTO `json:"stages"`
}

type pipelineResponseDTO struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Pipelines   []pipelineDTO `json:"pipelines"`
	Funnels     []funnelDTO   `json:"funnels"`
}

type advanceDTO struct {
	BatchID            string `json:"batch_id"`
	Variety            string `json:"variety"`
	Quantity           int    `json:"quantity"`
	Unit               string `json:"unit"`
	NextStage          string `json:"next_stage"`
	DueDate            string `json:"due_date"`
	IsOverdue          bool   `json:"is_overdue"`
	DaysInCurrentStage int    `json:"days_in_current_stage"`
	ExpectedDays       int    `json:"expected_days"`
}

type harvestDTO struct {
	BatchID       string `json:"batch_id"`
	Variety       string `json:"variety"`
	Quantity      int    `json:"quantity"`
	Unit          string `json:"unit"`
	DaysInWindow  int    `json:"days_in_window"`
	DaysRemaining int    `json:"days_remaining"`
	IsUrgent      bool   `json:"is_urgent"`
}

type boardDTO struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Date        string       `json:"date"`
	Advance     []advanceDTO `json:"advance"`
	Harvest     []harvestDTO `json:"harvest"`
	SowToday    []needDTO    `json:"sow_today"`
}

type calibrationDTO struct {
	VarietyID       string  `json:"variety_id"`
	CatalogYield    float64 `json:"catalog_yield"`
	CalibratedYield float64 `json:"calibrated_yield"`
	Samples         int     `json:"samples"`
	MeanAccuracy    *int    `json:"mean_accuracy,omitempty"`
}

type orderItemDTO struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

type orderDTO struct {
	ID                    string         `json:"id"`
	Customer              string         `json:"customer,omitempty"`
	Status                string         `json:"status"`
	CreatedAt             string         `json:"created_at"`
	RequestedDeliveryDate string         `json:"requested_delivery_date,omitempty"`
	Items                 []orderItemDTO `json:"items"`
}

type importResultDTO struct {
	Imported int      `json:"imported"`
	Items    int      `json:"items"`
	Rejected []string `json:"rejected"`
}

type varietyDTO struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	GrowDays        int      `json:"grow_days"`
	HarvestWindow   int      `json:"harvest_window"`
	GerminationDays int      `json:"germination_days"`
	BlackoutDays    int      `json:"blackout_days,omitempty"`
	SoakHours       int      `json:"soak_hours,omitempty"`
	YieldPerUnit    float64  `json:"yield_per_unit"`
	YieldUnit       string   `json:"yield_unit"`
	SeedCost        string   `json:"seed_cost"`
	WholesalePrice  string   `json:"wholesale_price"`
	PlantingDays    []string `json:"planting_days"`
	Aliases         []string `json:"aliases,omitempty"`
}

type scheduleDTO struct {
	VarietyID    string `json:"variety_id"`
	SowDate      string `json:"sow_date"`
	SoakDate     string `json:"soak_date,omitempty"`
	UncoverDate  string `json:"uncover_date,omitempty"`
	HarvestStart string `json:"harvest_start"`
	HarvestEnd   string `json:"harvest_end"`
}

// Request bodies.

type plantBody struct {
	Variety            string  `json:"variety"`
	Quantity           int     `json:"quantity"`
	SowDate            *string `json:"sow_date"`
	Notes              string  `json:"notes"`
	By                 string  `json:"by"`
	FromRecommendation bool    `json:"from_recommendation"`
	Today              *string `json:"today"`
}

type advanceBody struct {
	By    string  `json:"by"`
	Today *string `json:"today"`
}

type harvestBody struct {
	Yield *float64 `json:"yield"`
	By    string   `json:"by"`
	Today *string  `json:"today"`
}

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

func weekdayNames(days []time.Weekday) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()
	}
	return out
}

func toNeedDTOs(needs []domain.SowingNeed) []needDTO {
	out := make([]needDTO, len(needs))
	for i, n := range needs {
		out[i] = needDTO{
			CropID:              n.CropID,
			CropName:            n.CropName,
			Category:            string(n.CropCategory),
			WeeklyDemand:        n.WeeklyDemand,
			CurrentPipeline:     n.CurrentPipeline,
			DaysOfSupply:        n.DaysOfSupply,
			DisplayDaysOfSupply: n.DisplayDaysOfSupply,
			Urgency:             string(n.Urgency),
			RecommendedQty:      n.RecommendedQty,
			BatchUnit:           string(n.BatchUnit),
			GrowDays:            n.GrowDays,
			Reason:              n.Reason,
			YieldPerUnit:        n.YieldPerUnit,
			YieldUnit:           n.YieldUnit,
			PlantingDays:        weekdayNames(n.PlantingDays),
			EstimatedSeedCost:   n.EstimatedSeedCost.StringFixed(2),
		}
	}
	return out
}

func toRecommendDTO(resp *app.RecommendResponse) recommendDTO {
	out := recommendDTO{
		GeneratedAt:       resp.GeneratedAt,
		LookbackWeeks:     resp.LookbackWeeks,
		TargetDays:        resp.TargetDays,
		Needs:             toNeedDTOs(resp.Needs),
		UnmatchedProducts: nonNil(resp.UnmatchedProducts),
		Warnings:          nonNil(resp.Warnings),
	}
	for _, a := range resp.Allocations {
		out.Allocations = append(out.Allocations, allocationDTO{
			CropID:    a.Need.CropID,
			Allocated: a.Allocated,
			Partial:   a.Partial,
		})
	}
	for _, b := range resp.Blockers {
		out.Blockers = append(out.Blockers, toBlockerDTO(b))
	}
	return out
}

func toBlockerDTO(b sowing.CapacityBlocker) blockerDTO {
	return blockerDTO{CropID: b.CropID, Code: string(b.Code), Message: b.Message}
}

func toBatchDTO(b domain.Batch) batchDTO {
	out := batchDTO{
		ID:                    b.ID,
		Category:              string(b.Category),
		VarietyID:             b.VarietyID,
		VarietyName:           b.DisplayName(),
		Quantity:              b.Quantity,
		Unit:                  string(b.Unit),
		Stage:                 string(b.Stage),
		Source:                string(b.Source),
		Notes:                 b.Notes,
		SowDate:               dateString(b.SowDate),
		SoakDate:              domain.FormatDate(b.SoakDate),
		UncoverDate:           domain.FormatDate(b.UncoverDate),
		EstimatedHarvestStart: domain.FormatDate(b.EstimatedHarvestStart),
		EstimatedHarvestEnd:   domain.FormatDate(b.EstimatedHarvestEnd),
		StageHistory:          make([]stageEntryDTO, len(b.StageHistory)),
		HarvestedAt:           b.HarvestedAt,
		HarvestYield:          b.HarvestYield,
		ExpectedYield:         b.ExpectedYield,
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
	}
	for i, h := range b.StageHistory {
		out.StageHistory[i] = stageEntryDTO{Stage: string(h.Stage), EnteredAt: h.EnteredAt, By: h.By}
	}
	return out
}

func toAdvisoryDTO(a *lifecycle.Advisory) *advisoryDTO {
	if a == nil {
		return nil
	}
	out := &advisoryDTO{
		NeedsAdvance:       a.NeedsAdvance,
		IsOverdue:          a.IsOverdue,
		DaysInCurrentStage: a.DaysInCurrentStage,
		ExpectedDays:       a.ExpectedDays,
	}
	if a.HasNext {
		out.NextStage = string(a.NextStage.ID)
		out.DueDate = dateString(a.DueDate)
	}
	return out
}

func toBatchViewDTO(v app.BatchView) batchViewDTO {
	return batchViewDTO{
		Batch:      toBatchDTO(v.Batch),
		StageLabel: v.StageLabel,
		Advisory:   toAdvisoryDTO(v.Advisory),
		HarvestWindow: windowDTO{
			InWindow:      v.Window.InWindow,
			DaysInWindow:  v.Window.DaysInWindow,
			DaysRemaining: v.Window.DaysRemaining,
			IsUrgent:      v.Window.IsUrgent,
		},
		YieldAccuracy: v.YieldAccuracy,
	}
}

func toTransitionDTO(resp *app.TransitionResponse) transitionDTO {
	out := transitionDTO{
		Batch:     toBatchDTO(resp.Batch),
		FromStage: string(resp.FromStage),
		ToStage:   string(resp.ToStage),
	}
	if resp.EventErr != nil {
		out.EventErr = resp.EventErr.Error()
	}
	return out
}

func toPipelineResponseDTO(resp *app.PipelineResponse) pipelineResponseDTO {
	out := pipelineResponseDTO{
		GeneratedAt: resp.GeneratedAt,
		Pipelines:   make([]pipelineDTO, len(resp.Pipelines)),
		Funnels:     make([]funnelDTO, len(resp.Funnels)),
	}
	for i, p := range resp.Pipelines {
		byStage := make(map[string]stageCountDTO, len(p.ByStage))
		for id, c := range p.ByStage {
			byStage[string(id)] = stageCountDTO{Count: c.Count, Units: c.Units}
		}
		out.Pipelines[i] = pipelineDTO{
			CropID:          p.CropID,
			Category:        string(p.Category),
			CurrentPipeline: p.CurrentPipeline,
			ByStage:         byStage,
		}
	}
	for i, f := range resp.Funnels {
		fd := funnelDTO{
			Category: string(f.Category),
			Label:    f.Label,
			Unit:     string(f.Unit),
			Stages:   make([]funnelStageDTO, len(f.Stages)),
		}
		for j, st := range f.Stages {
			fd.Stages[j] = funnelStageDTO{
				Stage:         string(st.Stage.ID),
				Label:         st.Stage.Label,
				stageCountDTO: stageCountDTO{Count: st.Count, Units: st.Units},
			}
		}
		out.Funnels[i] = fd
	}
	return out
}

func toBoardDTO(resp *app.BoardResponse) boardDTO {
	b := resp.Board
	out := boardDTO{
		GeneratedAt: resp.GeneratedAt,
		Date:        dateString(b.Date),
		Advance:     make([]advanceDTO, len(b.Advance)),
		Harvest:     make([]harvestDTO, len(b.Harvest)),
		SowToday:    toNeedDTOs(b.SowToday),
	}
	for i, a := range b.Advance {
		out.Advance[i] = toAdvanceDTO(a)
	}
	for i, h := range b.Harvest {
		out.Harvest[i] = harvestDTO{
			BatchID:       h.Batch.ID,
			Variety:       h.Batch.DisplayName(),
			Quantity:      h.Batch.Quantity,
			Unit:          string(h.Batch.Unit),
			DaysInWindow:  h.DaysInWindow,
			DaysRemaining: h.DaysRemaining,
			IsUrgent:      h.IsUrgent,
		}
	}
	return out
}

func toAdvanceDTO(a board.AdvanceSuggestion) advanceDTO {
	return advanceDTO{
		BatchID:            a.Batch.ID,
		Variety:            a.Batch.DisplayName(),
		Quantity:           a.Batch.Quantity,
		Unit:               string(a.Batch.Unit),
		NextStage:          string(a.SuggestedNextStage.ID),
		DueDate:            dateString(a.DueDate),
		IsOverdue:          a.IsOverdue,
		DaysInCurrentStage: a.DaysInCurrentStage,
		ExpectedDays:       a.ExpectedDays,
	}
}

func toCalibrationDTOs(cals []sowing.Calibration) []calibrationDTO {
	out := make([]calibrationDTO, len(cals))
	for i, c := range cals {
		out[i] = calibrationDTO{
			VarietyID:       c.VarietyID,
			CatalogYield:    c.CatalogYield,
			CalibratedYield: c.CalibratedYield,
			Samples:         c.Samples,
			MeanAccuracy:    c.MeanAccuracy,
		}
	}
	return out
}

func toOrderDTO(o *domain.Order) orderDTO {
	out := orderDTO{
		ID:                    o.ID,
		Customer:              o.Customer,
		Status:                string(o.Status),
		CreatedAt:             dateString(o.CreatedAt),
		RequestedDeliveryDate: domain.FormatDate(o.RequestedDeliveryDate),
		Items:                 make([]orderItemDTO, len(o.Items)),
	}
	for i, it := range o.Items {
		out.Items[i] = orderItemDTO{Name: it.Name, Quantity: it.Quantity}
	}
	return out
}

func toVarietyDTO(v *domain.Variety) varietyDTO {
	return varietyDTO{
		ID:              v.ID,
		Name:            v.Name,
		Category:        string(v.Category),
		GrowDays:        v.GrowDays,
		HarvestWindow:   v.HarvestWindow,
		GerminationDays: v.GerminationDays,
		BlackoutDays:    v.BlackoutDays,
		SoakHours:       v.SoakHours,
		YieldPerUnit:    v.YieldPerUnit,
		YieldUnit:       v.YieldUnit,
		SeedCost:        v.SeedCost.StringFixed(2),
		WholesalePrice:  v.WholesalePrice.StringFixed(2),
		PlantingDays:    weekdayNames(v.PlantingDays),
		Aliases:         v.Aliases,
	}
}

func toScheduleDTO(id string, s domain.Schedule) scheduleDTO {
	return scheduleDTO{
		VarietyID:    id,
		SowDate:      dateString(s.SowDate),
		SoakDate:     domain.FormatDate(s.SoakDate),
		UncoverDate:  domain.FormatDate(s.UncoverDate),
		HarvestStart: dateString(s.HarvestStart),
		HarvestEnd:   dateString(s.HarvestEnd),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
