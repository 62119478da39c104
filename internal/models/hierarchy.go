package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ZillaPanchayat is the district tier of the administrative hierarchy.
type ZillaPanchayat struct {
	bun.BaseModel `bun:"table:zilla_panchayats,alias:zp"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Code      string    `bun:"code,notnull,unique" json:"code"`
	State     *string   `bun:"state" json:"state"`
	District  *string   `bun:"district" json:"district"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// Block groups Gram Panchayats under a Zilla.
type Block struct {
	bun.BaseModel `bun:"table:blocks,alias:b"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Code      string    `bun:"code,notnull,unique" json:"code"`
	ZillaID   string    `bun:"zilla_id,notnull" json:"zillaId"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	ZillaPanchayat *ZillaPanchayat `bun:"rel:belongs-to,join:zilla_id=id" json:"zillaPanchayat,omitempty"`
}

// GramPanchayat is the unit estimations are reported against.
type GramPanchayat struct {
	bun.BaseModel `bun:"table:gram_panchayats,alias:gp"`

	ID         string    `bun:"id,pk" json:"id"`
	Name       string    `bun:"name,notnull" json:"name"`
	Code       string    `bun:"code,notnull,unique" json:"code"`
	BlockID    string    `bun:"block_id,notnull" json:"blockId"`
	Population *int      `bun:"population" json:"population"`
	Area       *float64  `bun:"area" json:"area"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	Block *Block  `bun:"rel:belongs-to,join:block_id=id" json:"block,omitempty"`
	Wards []*Ward `bun:"rel:has-many,join:id=panchayat_id" json:"wards,omitempty"`

	EstimationCount int              `bun:"estimation_count,scanonly" json:"-"`
	CollectorCount  int              `bun:"collector_count,scanonly" json:"-"`
	Count           *PanchayatCounts `bun:"-" json:"_count,omitempty"`
}

// PanchayatCounts is the related-row tally returned with panchayat listings.
type PanchayatCounts struct {
	Estimations int `json:"estimations"`
	Collectors  int `json:"collectors"`
}

// Ward is the smallest administrative unit.
type Ward struct {
	bun.BaseModel `bun:"table:wards,alias:w"`

	ID          string    `bun:"id,pk" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	WardNumber  int       `bun:"ward_number,notnull" json:"wardNumber"`
	PanchayatID string    `bun:"panchayat_id,notnull" json:"panchayatId"`
	Households  *int      `bun:"households" json:"households"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

type CollectorRole string

const (
	RoleCollector  CollectorRole = "COLLECTOR"
	RoleSupervisor CollectorRole = "SUPERVISOR"
)

// Valid reports whether r is a known role.
func (r CollectorRole) Valid() bool {
	return r == RoleCollector || r == RoleSupervisor
}

// Collector is field personnel; phone numbers are unique.
type Collector struct {
	bun.BaseModel `bun:"table:collectors,alias:c"`

	ID          string        `bun:"id,pk" json:"id"`
	Name        string        `bun:"name,notnull" json:"name"`
	Phone       string        `bun:"phone,notnull,unique" json:"phone"`
	Email       *string       `bun:"email" json:"email"`
	Role        CollectorRole `bun:"role,notnull" json:"role"`
	PanchayatID string        `bun:"panchayat_id,notnull" json:"panchayatId"`
	WardID      *string       `bun:"ward_id" json:"wardId"`
	CreatedAt   time.Time     `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time     `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// CollectorFilter narrows collector listings. Empty fields are ignored.
type CollectorFilter struct {
	PanchayatID string
	WardID      string
	Role        CollectorRole
}
