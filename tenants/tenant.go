package tenants

// Tenant is an instructor's store as the public store info endpoint
// describes it. The subdomain is the tenant key everywhere else.
type Tenant struct {
	StoreName    string  `json:"store_name"`
	FullName     string  `json:"full_name"`
	Bio          *string `json:"bio,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
	Subdomain    string  `json:"subdomain"`

	Footer

	BannerSlides   []BannerSlide `json:"banner_slides,omitempty"`
	KakaoChannelID *string       `json:"kakao_channel_id,omitempty"`
}

// Footer is the business information shown at the bottom of every store page.
type Footer struct {
	CompanyName    *string `json:"footer_company_name,omitempty"`
	CEOName        *string `json:"footer_ceo_name,omitempty"`
	PrivacyOfficer *string `json:"footer_privacy_officer,omitempty"`
	BusinessNumber *string `json:"footer_business_number,omitempty"`
	SalesNumber    *string `json:"footer_sales_number,omitempty"`
	Contact        *string `json:"footer_contact,omitempty"`
	BusinessHours  *string `json:"footer_business_hours,omitempty"`
	Address        *string `json:"footer_address,omitempty"`
}

type BannerSlide struct {
	ID       string  `json:"id"`
	ImageURL string  `json:"image_url"`
	Title    *string `json:"title,omitempty"`
	Subtitle *string `json:"subtitle,omitempty"`
	LinkURL  *string `json:"link_url,omitempty"`
	Order    *int    `json:"order,omitempty"`
}
