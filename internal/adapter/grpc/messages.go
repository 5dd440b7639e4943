package grpc

// Empty is used by RPCs without parameters or result
type Empty struct{}

// ExpectedReturn is an annual return range as decimal fractions
type ExpectedReturn struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Portfolio messages

type PortfolioResponse struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	ExpectedReturn ExpectedReturn `json:"expected_return"`
	IsCustomized   bool           `json:"is_customized"`
	UpdatedAt      string         `json:"updated_at"`
	Categories     []Category     `json:"categories"`
}

type Category struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Portion     float64 `json:"portion"`
	Items       []Item  `json:"items,omitempty"`
}

// Item carries the absolute portion and, when listed per category, the share of the category
type Item struct {
	ID              string         `json:"id"`
	CategoryID      string         `json:"category_id"`
	MasterItemID    string         `json:"master_item_id,omitempty"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Portion         float64        `json:"portion"`
	RelativePortion *float64       `json:"relative_portion,omitempty"`
	ExpectedReturn  ExpectedReturn `json:"expected_return"`
	IsCustom        bool           `json:"is_custom"`
	IsCustomReturn  bool           `json:"is_custom_return"`
}

type CreateFromPresetRequest struct {
	PresetCode string `json:"preset_code"`
}

type Preset struct {
	ID                  string         `json:"id"`
	Code                string         `json:"code"`
	Name                string         `json:"name"`
	Description         string         `json:"description"`
	TargetReturnPercent float64        `json:"target_return_percent"`
	ExpectedReturn      ExpectedReturn `json:"expected_return"`
}

type PresetsResponse struct {
	Presets []Preset `json:"presets"`
}

type FindPresetsRequest struct {
	TargetReturnPercent float64 `json:"target_return_percent"`
	Limit               int     `json:"limit"`
}

type Portion struct {
	ID      string  `json:"id"`
	Portion float64 `json:"portion"`
}

type UpdateCategoryPortionsRequest struct {
	Portions []Portion `json:"portions"`
}

type CategoriesResponse struct {
	Categories []Category `json:"categories"`
}

type CustomInfo struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	ExpectedReturn *ExpectedReturn `json:"expected_return,omitempty"`
}

type AddCategoryRequest struct {
	MasterCategoryID string      `json:"master_category_id,omitempty"`
	Custom           *CustomInfo `json:"custom,omitempty"`
}

type CategoryRequest struct {
	CategoryID string `json:"category_id"`
}

type UpdateCategoryInfoRequest struct {
	CategoryID  string  `json:"category_id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type MasterCategory struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type MasterCategoriesResponse struct {
	Categories []MasterCategory `json:"categories"`
}

// GetItemsRequest lists every item of the portfolio, or only the items of CategoryID with
// their relative portions when it is set
type GetItemsRequest struct {
	CategoryID string `json:"category_id,omitempty"`
}

type ItemsResponse struct {
	Items []Item `json:"items"`
}

// UpdateItemPortionsRequest carries absolute portions, or portions relative to CategoryID
// when it is set
type UpdateItemPortionsRequest struct {
	CategoryID string    `json:"category_id,omitempty"`
	Portions   []Portion `json:"portions"`
}

type AddItemRequest struct {
	CategoryID   string      `json:"category_id"`
	MasterItemID string      `json:"master_item_id,omitempty"`
	Custom       *CustomInfo `json:"custom,omitempty"`
}

type ItemRequest struct {
	ItemID string `json:"item_id"`
}

type UpdateItemInfoRequest struct {
	ItemID         string          `json:"item_id"`
	Name           *string         `json:"name,omitempty"`
	Description    *string         `json:"description,omitempty"`
	ExpectedReturn *ExpectedReturn `json:"expected_return,omitempty"`
}

type MasterItem struct {
	ID               string         `json:"id"`
	MasterCategoryID string         `json:"master_category_id"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	ExpectedReturn   ExpectedReturn `json:"expected_return"`
}

type MasterItemsResponse struct {
	Items []MasterItem `json:"items"`
}

// Profile messages

type AssessRiskRequest struct {
	Score int `json:"score"`
}

type RiskTypeResponse struct {
	RiskType string `json:"risk_type,omitempty"`
}

// PlanRequest carries amounts as decimal strings and the start date as YYYY-MM-DD
type PlanRequest struct {
	InitialAmount  string `json:"initial_amount,omitempty"`
	MonthlyAmount  string `json:"monthly_amount"`
	StartDate      string `json:"start_date"`
	PaymentDay     int    `json:"payment_day"`
	Period         int    `json:"period"`
	ExpectedReturn string `json:"expected_return"`
	TargetAmount   string `json:"target_amount"`
}

type PlanResponse struct {
	ID             string `json:"id"`
	Version        int    `json:"version"`
	InitialAmount  string `json:"initial_amount"`
	MonthlyAmount  string `json:"monthly_amount"`
	StartDate      string `json:"start_date"`
	PaymentDay     int    `json:"payment_day"`
	Period         int    `json:"period"`
	ExpectedReturn string `json:"expected_return"`
	TargetAmount   string `json:"target_amount"`
	IsActive       bool   `json:"is_active"`
	CreatedAt      string `json:"created_at"`
}

// Payment messages

type PaymentSchedule struct {
	ID               string `json:"id"`
	PlanID           string `json:"plan_id"`
	Sequence         int    `json:"sequence"`
	ExpectedDate     string `json:"expected_date"`
	Amount           string `json:"amount"`
	Status           string `json:"status"`
	ActualPaidAmount string `json:"actual_paid_amount,omitempty"`
	ActualPaidDate   string `json:"actual_paid_date,omitempty"`
}

type SchedulesResponse struct {
	Schedules []PaymentSchedule `json:"schedules"`
}

// RecordPaymentRequest takes an RFC3339 paid_at; empty means now
type RecordPaymentRequest struct {
	ScheduleID string `json:"schedule_id"`
	Amount     string `json:"amount"`
	PaidAt     string `json:"paid_at,omitempty"`
}

type ProgressResponse struct {
	TotalPrincipal    string          `json:"total_principal"`
	CurrentAssetValue string          `json:"current_asset_value"`
	TotalReturnAmount string          `json:"total_return_amount"`
	TotalReturnRate   string          `json:"total_return_rate"`
	TotalProgressRate string          `json:"total_progress_rate"`
	PaidCount         int             `json:"paid_count"`
	RemainingPeriod   int             `json:"remaining_period"`
	Currency          string          `json:"currency"`
	Display           ProgressDisplay `json:"display"`
}

type ProgressDisplay struct {
	TotalPrincipal    string `json:"total_principal"`
	CurrentAssetValue string `json:"current_asset_value"`
	TotalReturnAmount string `json:"total_return_amount"`
	TargetAmount      string `json:"target_amount"`
}
