package m_category

// Table name constant
const TableName = "categories"

// Field name constants for type-safe database access
const (
	CategoryID = "category_id"
	Name       = "name"
	ParentID   = "parent_id"
	Position   = "position"
	IsActive   = "is_active"
	CreatedAt  = "created_at"
	UpdatedAt  = "updated_at"
	CreatedBy  = "created_by"
	UpdatedBy  = "updated_by"
)
