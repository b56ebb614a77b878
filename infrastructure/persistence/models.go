package persistence

import "time"

// UserModel is a row in "users".
type UserModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string    `gorm:"column:email;size:320;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null"`
	Role         string    `gorm:"column:role;size:32;index;not null;default:owner"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (UserModel) TableName() string { return "users" }

// BusinessModel is a row in "businesses".
type BusinessModel struct {
	ID                     int64     `gorm:"column:id;primaryKey;autoIncrement"`
	OwnerID                int64     `gorm:"column:owner_id;index;not null"`
	Name                   string    `gorm:"column:name;size:255;not null"`
	Slug                   string    `gorm:"column:slug;size:64;uniqueIndex;not null"`
	BrandColor             string    `gorm:"column:brand_color;size:7;not null;default:'#2563eb'"`
	LogoURL                string    `gorm:"column:logo_url;size:2048"`
	GoogleURL              string    `gorm:"column:google_url;size:2048"`
	YelpURL                string    `gorm:"column:yelp_url;size:2048"`
	FacebookURL            string    `gorm:"column:facebook_url;size:2048"`
	NextdoorURL            string    `gorm:"column:nextdoor_url;size:2048"`
	NotifyOnFeedback       bool      `gorm:"column:notify_on_feedback;not null"`
	SubscriptionStatus     string    `gorm:"column:subscription_status;size:32;index;not null;default:pending"`
	CustomerRef            string    `gorm:"column:customer_ref;size:255;index"`
	SurveyIndustry         string    `gorm:"column:survey_industry;size:255"`
	SurveyMonthlyCustomers string    `gorm:"column:survey_monthly_customers;size:64"`
	SurveyHeardAbout       string    `gorm:"column:survey_heard_about;size:255"`
	CreatedAt              time.Time `gorm:"column:created_at;index"`
	UpdatedAt              time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (BusinessModel) TableName() string { return "businesses" }

// ReviewTemplateModel is a row in "review_templates".
type ReviewTemplateModel struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	BusinessID int64     `gorm:"column:business_id;not null;uniqueIndex:idx_templates_business_platform"`
	Platform   string    `gorm:"column:platform;size:32;not null;uniqueIndex:idx_templates_business_platform"`
	Body       string    `gorm:"column:body;type:text;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (ReviewTemplateModel) TableName() string { return "review_templates" }

// ReviewModel is a row in "reviews".
type ReviewModel struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	BusinessID int64     `gorm:"column:business_id;index:idx_reviews_business_created;not null"`
	Rating     int       `gorm:"column:rating;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;index:idx_reviews_business_created"`
}

// TableName returns the table name.
func (ReviewModel) TableName() string { return "reviews" }

// FeedbackModel is a row in "feedback".
type FeedbackModel struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement"`
	BusinessID int64      `gorm:"column:business_id;index;not null"`
	Rating     int        `gorm:"column:rating;not null;default:0"`
	Message    string     `gorm:"column:message;type:text;not null"`
	Name       string     `gorm:"column:name;size:200"`
	Email      string     `gorm:"column:email;size:200"`
	Phone      string     `gorm:"column:phone;size:200"`
	Resolved   bool       `gorm:"column:resolved;not null;default:false"`
	ResolvedAt *time.Time `gorm:"column:resolved_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;index"`
}

// TableName returns the table name.
func (FeedbackModel) TableName() string { return "feedback" }

// LeadModel is a row in "leads".
type LeadModel struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string     `gorm:"column:email;size:320;uniqueIndex;not null"`
	Name         string     `gorm:"column:name;size:255"`
	BusinessName string     `gorm:"column:business_name;size:255"`
	Phone        string     `gorm:"column:phone;size:64"`
	Source       string     `gorm:"column:source;size:255;index"`
	Message      string     `gorm:"column:message;type:text"`
	Status       string     `gorm:"column:status;size:32;index;not null;default:new"`
	ConvertedAt  *time.Time `gorm:"column:converted_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;index"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (LeadModel) TableName() string { return "leads" }

// InviteCodeModel is a row in "invite_codes".
type InviteCodeModel struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Code      string     `gorm:"column:code;size:16;uniqueIndex;not null"`
	Note      string     `gorm:"column:note;size:255"`
	Status    string     `gorm:"column:status;size:32;index;not null;default:unused"`
	UsedBy    *int64     `gorm:"column:used_by"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time  `gorm:"column:created_at;index"`
}

// TableName returns the table name.
func (InviteCodeModel) TableName() string { return "invite_codes" }

// EarlyAccessSignupModel is a row in "early_access_signups".
type EarlyAccessSignupModel struct {
	ID                int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Email             string     `gorm:"column:email;size:320;uniqueIndex;not null"`
	Name              string     `gorm:"column:name;size:255"`
	BusinessName      string     `gorm:"column:business_name;size:255"`
	Status            string     `gorm:"column:status;size:32;index;not null;default:pending"`
	CheckoutSessionID string     `gorm:"column:checkout_session_id;size:255;index"`
	AmountCents       int64      `gorm:"column:amount_cents;not null;default:0"`
	PaidAt            *time.Time `gorm:"column:paid_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;index"`
}

// TableName returns the table name.
func (EarlyAccessSignupModel) TableName() string { return "early_access_signups" }

// PasswordResetModel is a row in "password_resets".
type PasswordResetModel struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64      `gorm:"column:user_id;index;not null"`
	TokenHash string     `gorm:"column:token_hash;size:64;uniqueIndex;not null"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

// TableName returns the table name.
func (PasswordResetModel) TableName() string { return "password_resets" }

// PaymentEventModel is a row in "payment_events".
type PaymentEventModel struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	EventID     string    `gorm:"column:event_id;size:255;uniqueIndex;not null"`
	Type        string    `gorm:"column:type;size:255;index;not null"`
	ProcessedAt time.Time `gorm:"column:processed_at;not null"`
}

// TableName returns the table name.
func (PaymentEventModel) TableName() string { return "payment_events" }

// TaskModel is a row in "tasks".
type TaskModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	DedupKey  string    `gorm:"column:dedup_key;type:varchar(255);uniqueIndex;not null"`
	Type      string    `gorm:"column:type;type:varchar(255);index;not null"`
	Payload   string    `gorm:"column:payload;type:text"`
	Priority  int       `gorm:"column:priority;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name.
func (TaskModel) TableName() string { return "tasks" }
