package types

// ContentType represents the kind of content project.
type ContentType string

const (
	ContentTypePodcast ContentType = "podcast"
	ContentTypeBlog    ContentType = "blog"
	ContentTypeEbook   ContentType = "ebook"
)

func (t ContentType) IsValid() bool {
	switch t {
	case ContentTypePodcast, ContentTypeBlog, ContentTypeEbook:
		return true
	default:
		return false
	}
}

func (t ContentType) String() string { return string(t) }

// ContentStatus represents the workflow state of a project or item.
type ContentStatus string

const (
	ContentStatusOutline   ContentStatus = "outline"
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusReview    ContentStatus = "review"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusArchived  ContentStatus = "archived"
)

func (s ContentStatus) IsValid() bool {
	switch s {
	case ContentStatusOutline, ContentStatusDraft, ContentStatusReview,
		ContentStatusPublished, ContentStatusArchived:
		return true
	default:
		return false
	}
}

func (s ContentStatus) String() string { return string(s) }

// HostType is the podcast hosting format. Only meaningful for podcast projects.
type HostType string

const (
	HostTypeSingle      HostType = "single"
	HostTypeMorningShow HostType = "morning_show"
	HostTypeInterview   HostType = "interview"
)

func (h HostType) IsValid() bool {
	switch h {
	case HostTypeSingle, HostTypeMorningShow, HostTypeInterview:
		return true
	default:
		return false
	}
}

// Role represents a user's role within an organization.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleAdmin       Role = "admin"
	RoleEditor      Role = "editor"
	RoleContributor Role = "contributor"
	RoleViewer      Role = "viewer"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor, RoleContributor, RoleViewer:
		return true
	default:
		return false
	}
}

// BillingPlan represents an organization's subscription tier.
type BillingPlan string

const (
	PlanStarter      BillingPlan = "starter"
	PlanProfessional BillingPlan = "professional"
	PlanEnterprise   BillingPlan = "enterprise"
)

func (p BillingPlan) IsValid() bool {
	switch p {
	case PlanStarter, PlanProfessional, PlanEnterprise:
		return true
	default:
		return false
	}
}
