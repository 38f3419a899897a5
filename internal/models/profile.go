package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

type Profile struct {
	BaseModel
	UserID        string `gorm:"uniqueIndex;not null"`
	DisplayName   string `gorm:"not null"`
	Neighbourhood string
	Lat           float64
	Lng           float64
	// SearchRadiusKm bounds the area a helper is willing to cover.
	SearchRadiusKm float64        `gorm:"default:3"`
	Skills         datatypes.JSON `gorm:"type:jsonb"` // ["groceries", "gardening"]
	Availability   Availability   `gorm:"type:varchar(20);default:'later'"`

	Credits          int       `gorm:"default:0;check:credits >= 0"`
	TasksCompleted   int       `gorm:"default:0"`
	ReliabilityScore float64   `gorm:"default:0"` // 0..5
	TrustTier        TrustTier `gorm:"type:varchar(10);default:'tier_0'"`
	PhotosCount      int       `gorm:"default:0"`
	IsDemo           bool      `gorm:"default:false"`
}

// GetSkills returns the skill set as a slice of category tags.
func (p *Profile) GetSkills() []string {
	var skills []string
	if len(p.Skills) > 0 {
		_ = json.Unmarshal(p.Skills, &skills)
	}
	return skills
}

func (p *Profile) SetSkills(skills []string) {
	data, _ := json.Marshal(skills)
	p.Skills = datatypes.JSON(data)
}
