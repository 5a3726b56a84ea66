package api

import (
	"encoding/json"
	"strings"
	"time"
)

// Timestamp decodes the backend's datetimes, which may or may not carry a
// zone. Zone-less values are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		t.Time = time.Time{}
		return nil
	}

	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, *raw)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// MarshalYAML keeps CLI output readable.
func (t Timestamp) MarshalYAML() (any, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.UTC().Format(time.RFC3339), nil
}

// Page bounds list endpoints. The zero value asks for the first 100 entries.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) normalized() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = 100
	}
	return p
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt Timestamp `json:"created_at"`
}

type SignupUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type SignupInstructorRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FullName  string  `json:"full_name"`
	Subdomain string  `json:"subdomain"`
	StoreName string  `json:"store_name"`
	Bio       *string `json:"bio,omitempty"`
}

// FooterInfo is the business information an instructor shows on the store.
type FooterInfo struct {
	CompanyName    *string `json:"footer_company_name,omitempty" yaml:"company_name,omitempty"`
	CEOName        *string `json:"footer_ceo_name,omitempty" yaml:"ceo_name,omitempty"`
	PrivacyOfficer *string `json:"footer_privacy_officer,omitempty" yaml:"privacy_officer,omitempty"`
	BusinessNumber *string `json:"footer_business_number,omitempty" yaml:"business_number,omitempty"`
	SalesNumber    *string `json:"footer_sales_number,omitempty" yaml:"sales_number,omitempty"`
	Contact        *string `json:"footer_contact,omitempty" yaml:"contact,omitempty"`
	BusinessHours  *string `json:"footer_business_hours,omitempty" yaml:"business_hours,omitempty"`
	Address        *string `json:"footer_address,omitempty" yaml:"address,omitempty"`
}

type Instructor struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Subdomain    string    `json:"subdomain"`
	StoreName    string    `json:"store_name"`
	Bio          *string   `json:"bio,omitempty"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    Timestamp `json:"created_at"`

	FooterInfo
}

type InstructorUpdate struct {
	FullName     *string `json:"full_name,omitempty"`
	StoreName    *string `json:"store_name,omitempty"`
	Subdomain    *string `json:"subdomain,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
	Email        *string `json:"email,omitempty"`

	FooterInfo

	KakaoClientID     *string `json:"kakao_client_id,omitempty"`
	KakaoClientSecret *string `json:"kakao_client_secret,omitempty"`
	KakaoRedirectURI  *string `json:"kakao_redirect_uri,omitempty"`
	KakaoEnabled      *bool   `json:"kakao_enabled,omitempty"`
}

type ProductType string

const (
	ProductTypeVideo ProductType = "video"
	ProductTypeEbook ProductType = "ebook"
)

func (t ProductType) Valid() bool {
	return t == ProductTypeVideo || t == ProductTypeEbook
}

type ProductOption struct {
	Name        string  `json:"name"`
	Price       *int64  `json:"price,omitempty"`
	Description *string `json:"description,omitempty"`
}

// PurchaseModal configures the countdown popup on a product page.
type PurchaseModal struct {
	BgColor      *string    `json:"modal_bg_color,omitempty" yaml:"bg_color,omitempty"`
	BgOpacity    *float64   `json:"modal_bg_opacity,omitempty" yaml:"bg_opacity,omitempty"`
	Text         *string    `json:"modal_text,omitempty" yaml:"text,omitempty"`
	TextColor    *string    `json:"modal_text_color,omitempty" yaml:"text_color,omitempty"`
	ButtonText   *string    `json:"modal_button_text,omitempty" yaml:"button_text,omitempty"`
	ButtonColor  *string    `json:"modal_button_color,omitempty" yaml:"button_color,omitempty"`
	CountDays    *int       `json:"modal_count_days,omitempty" yaml:"count_days,omitempty"`
	CountHours   *int       `json:"modal_count_hours,omitempty" yaml:"count_hours,omitempty"`
	CountMinutes *int       `json:"modal_count_minutes,omitempty" yaml:"count_minutes,omitempty"`
	CountSeconds *int       `json:"modal_count_seconds,omitempty" yaml:"count_seconds,omitempty"`
	EndTime      *Timestamp `json:"modal_end_time,omitempty" yaml:"end_time,omitempty"`
}

// Product prices are whole won.
type Product struct {
	ID                  string      `json:"id"`
	InstructorID        string      `json:"instructor_id"`
	Title               string      `json:"title"`
	Description         *string     `json:"description,omitempty"`
	DetailedDescription *string     `json:"detailed_description,omitempty"`
	Price               int64       `json:"price"`
	DiscountPrice       *int64      `json:"discount_price,omitempty"`
	Thumbnail           *string     `json:"thumbnail,omitempty"`
	Type                ProductType `json:"type"`
	Category            *string     `json:"category,omitempty"`
	Duration            *int        `json:"duration,omitempty"`
	FileURL             *string     `json:"file_url,omitempty"`
	IsPublished         bool        `json:"is_published"`
	CreatedAt           Timestamp   `json:"created_at"`
	UpdatedAt           *Timestamp  `json:"updated_at,omitempty"`

	IsNew             *bool           `json:"is_new,omitempty"`
	BannerImage       *string         `json:"banner_image,omitempty"`
	Curriculum        *string         `json:"curriculum,omitempty"`
	ScheduleInfo      *string         `json:"schedule_info,omitempty"`
	ProductOptions    []ProductOption `json:"product_options,omitempty"`
	AdditionalOptions []ProductOption `json:"additional_options,omitempty"`

	PurchaseModal `yaml:",inline"`
}

// ProductUpdate carries only the fields to change. Creating a product uses
// the same record with Title, Price and Type set.
type ProductUpdate struct {
	Title               *string      `json:"title,omitempty"`
	Description         *string      `json:"description,omitempty"`
	DetailedDescription *string      `json:"detailed_description,omitempty"`
	Price               *int64       `json:"price,omitempty"`
	DiscountPrice       *int64       `json:"discount_price,omitempty"`
	Thumbnail           *string      `json:"thumbnail,omitempty"`
	Type                *ProductType `json:"type,omitempty"`
	Category            *string      `json:"category,omitempty"`
	Duration            *int         `json:"duration,omitempty"`
	FileURL             *string      `json:"file_url,omitempty"`
	IsPublished         *bool        `json:"is_published,omitempty"`

	IsNew             *bool           `json:"is_new,omitempty"`
	BannerImage       *string         `json:"banner_image,omitempty"`
	Curriculum        *string         `json:"curriculum,omitempty"`
	ScheduleInfo      *string         `json:"schedule_info,omitempty"`
	ProductOptions    []ProductOption `json:"product_options,omitempty"`
	AdditionalOptions []ProductOption `json:"additional_options,omitempty"`

	PurchaseModal
}

type ProductStats struct {
	TotalProducts int    `json:"total_products"`
	InstructorID  string `json:"instructor_id"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderRefunded  OrderStatus = "REFUNDED"
)

type Order struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	ProductID     string      `json:"product_id"`
	InstructorID  string      `json:"instructor_id"`
	OrderNumber   string      `json:"order_number"`
	Status        OrderStatus `json:"status"`
	OriginalPrice int64       `json:"original_price"`
	PaidPrice     int64       `json:"paid_price"`
	PaymentMethod *string     `json:"payment_method,omitempty"`
	PaymentID     *string     `json:"payment_id,omitempty"`
	PaidAt        *Timestamp  `json:"paid_at,omitempty"`
	CancelledAt   *Timestamp  `json:"cancelled_at,omitempty"`
	RefundedAt    *Timestamp  `json:"refunded_at,omitempty"`
	RefundReason  *string     `json:"refund_reason,omitempty"`
	CreatedAt     Timestamp   `json:"created_at"`
	UpdatedAt     *Timestamp  `json:"updated_at,omitempty"`
}

type OrderCreate struct {
	ProductID     string  `json:"product_id"`
	OriginalPrice int64   `json:"original_price"`
	PaidPrice     int64   `json:"paid_price"`
	PaymentMethod *string `json:"payment_method,omitempty"`
}

type OrderUpdate struct {
	Status       *OrderStatus `json:"status,omitempty"`
	PaymentID    *string      `json:"payment_id,omitempty"`
	PaidAt       *Timestamp   `json:"paid_at,omitempty"`
	RefundReason *string      `json:"refund_reason,omitempty"`
}

type OrderFilter struct {
	Page
	Status OrderStatus
}

type OrderStats struct {
	InstructorID   string              `json:"instructor_id"`
	TotalOrders    int                 `json:"total_orders"`
	TotalRevenue   int64               `json:"total_revenue"`
	OrdersByStatus map[OrderStatus]int `json:"orders_by_status"`
}

type Customer struct {
	ID              string     `json:"id"`
	InstructorID    string     `json:"instructor_id"`
	Email           string     `json:"email"`
	FullName        string     `json:"full_name"`
	Phone           *string    `json:"phone,omitempty"`
	IsActive        bool       `json:"is_active"`
	IsEmailVerified bool       `json:"is_email_verified"`
	Notes           *string    `json:"notes,omitempty"`
	Tags            *string    `json:"tags,omitempty"`
	CreatedAt       Timestamp  `json:"created_at"`
	UpdatedAt       *Timestamp `json:"updated_at,omitempty"`
	LastLogin       *Timestamp `json:"last_login,omitempty"`
}

type CustomerSignup struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone,omitempty"`
}

type CustomerUpdate struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Tags     *string `json:"tags,omitempty"`
}

type CustomerFilter struct {
	Page
	Search   string
	IsActive *bool
}

type CustomerStats struct {
	TotalCustomers int    `json:"total_customers"`
	InstructorID   string `json:"instructor_id"`
}

type Chapter struct {
	ID          string     `json:"id"`
	ProductID   string     `json:"product_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	OrderIndex  int        `json:"order_index"`
	IsPublished bool       `json:"is_published"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
	Sections    []Section  `json:"sections,omitempty"`
}

// Section content is editor JSON kept opaque; ContentHTML is what readers render.
type Section struct {
	ID          string          `json:"id"`
	ChapterID   string          `json:"chapter_id"`
	Title       string          `json:"title"`
	Content     json.RawMessage `json:"content,omitempty" yaml:"-"`
	ContentHTML *string         `json:"content_html,omitempty"`
	OrderIndex  int             `json:"order_index"`
	ReadingTime *int            `json:"reading_time,omitempty"`
	IsPublished bool            `json:"is_published"`
	IsFree      bool            `json:"is_free"`
	CreatedAt   Timestamp       `json:"created_at"`
	UpdatedAt   *Timestamp      `json:"updated_at,omitempty"`
}

type ChapterInput struct {
	ProductID   string  `json:"product_id,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	OrderIndex  *int    `json:"order_index,omitempty"`
	IsPublished *bool   `json:"is_published,omitempty"`
}

type SectionInput struct {
	ChapterID   string          `json:"chapter_id,omitempty"`
	Title       *string         `json:"title,omitempty"`
	Content     json.RawMessage `json:"content,omitempty"`
	ContentHTML *string         `json:"content_html,omitempty"`
	OrderIndex  *int            `json:"order_index,omitempty"`
	ReadingTime *int            `json:"reading_time,omitempty"`
	IsPublished *bool           `json:"is_published,omitempty"`
	IsFree      *bool           `json:"is_free,omitempty"`
}

type EbookStructure struct {
	ProductID    string    `json:"product_id"`
	ProductTitle string    `json:"product_title"`
	Chapters     []Chapter `json:"chapters"`
}

type Progress struct {
	ID              string     `json:"id"`
	CustomerID      string     `json:"customer_id"`
	SectionID       string     `json:"section_id"`
	IsCompleted     bool       `json:"is_completed"`
	ReadingProgress int        `json:"reading_progress"`
	LastReadAt      Timestamp  `json:"last_read_at"`
	CreatedAt       Timestamp  `json:"created_at"`
	UpdatedAt       *Timestamp `json:"updated_at,omitempty"`
}

type ProgressUpdate struct {
	SectionID       string `json:"section_id"`
	IsCompleted     bool   `json:"is_completed"`
	ReadingProgress int    `json:"reading_progress"`
}

type Bookmark struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customer_id"`
	SectionID  string     `json:"section_id"`
	Note       *string    `json:"note,omitempty"`
	Position   *int       `json:"position,omitempty"`
	CreatedAt  Timestamp  `json:"created_at"`
	UpdatedAt  *Timestamp `json:"updated_at,omitempty"`
}

type BookmarkInput struct {
	SectionID string  `json:"section_id"`
	Note      *string `json:"note,omitempty"`
	Position  *int    `json:"position,omitempty"`
}
