package domain

type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyWarning  Urgency = "warning"
	UrgencyHealthy  Urgency = "healthy"
)

type CropCategory string

const (
	CategoryMicrogreens CropCategory = "microgreens"
	CategoryLeafyGreens CropCategory = "leafy_greens"
	CategoryHerbs       CropCategory = "herbs"
	CategoryMushrooms   CropCategory = "mushrooms"
)

// AllCategories lists categories in display order.
func AllCategories() []CropCategory {
	return []CropCategory{CategoryMicrogreens, CategoryLeafyGreens, CategoryHerbs, CategoryMushrooms}
}

// IsValid reports whether c is one of the known categories.
func (c CropCategory) IsValid() bool {
	switch c {
	case CategoryMicrogreens, CategoryLeafyGreens, CategoryHerbs, CategoryMushrooms:
		return true
	}
	return false
}

type Unit string

const (
	UnitTray  Unit = "tray"
	UnitPort  Unit = "port"
	UnitBlock Unit = "block"
)

// Plural returns the unit name for counts other than one.
func (u Unit) Plural(n int) string {
	if n == 1 {
		return string(u)
	}
	return string(u) + "s"
}

type StageID string

const (
	// StageHarvested is the terminal stage shared by every category.
	StageHarvested StageID = "harvested"

	StageSown     StageID = "sown"
	StageBlackout StageID = "blackout"
	StageLight    StageID = "light"

	StageSeeded       StageID = "seeded"
	StageGermination  StageID = "germination"
	StageTransplanted StageID = "transplanted"
	StageGrowing      StageID = "growing"

	StageInoculated StageID = "inoculated"
	StageColonizing StageID = "colonizing"
	StagePinning    StageID = "pinning"
	StageFruiting   StageID = "fruiting"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPlaced    OrderStatus = "placed"
	OrderConfirmed OrderStatus = "confirmed"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// ValidOrderStatuses is the canonical set of accepted order status strings.
var ValidOrderStatuses = map[OrderStatus]bool{
	OrderPending: true, OrderPlaced: true, OrderConfirmed: true,
	OrderDelivered: true, OrderCancelled: true,
}

type BatchSource string

const (
	SourceRecommendation BatchSource = "recommendation"
	SourceManual         BatchSource = "manual"
)
