package pricing

import (
	"math"
	"time"

	"lms/models/course"

	"gorm.io/gorm"
)

// CoursePrice is the resolved pricing of a single course at a point in time
type CoursePrice struct {
	CourseID       uint
	InstructorID   uint
	ListPrice      float64
	OfferPrice     float64 // 0 when no offer applies
	EffectivePrice float64
	HasOffer       bool
}

// Truncate2 cuts a value down to two decimal places. Prices are always
// truncated, never rounded up, so a discount can only err in the
// student's favour.
func Truncate2(v float64) float64 {
	// The epsilon keeps values like 149.99*100 = 14998.999... from
	// flooring one cent low
	return math.Floor(v*100+1e-9) / 100
}

// Resolve returns the price effective right now for every requested course:
// the list price unless an approved, currently-active offer applies. Offers
// are time-boxed, so callers must resolve fresh for every checkout attempt.
// Courses that do not exist (or are deleted) are absent from the result.
func Resolve(db *gorm.DB, courseIDs []uint) (map[uint]CoursePrice, error) {
	result := make(map[uint]CoursePrice, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}

	var courses []course.Course
	if err := db.Where("id IN ? AND is_deleted = false", courseIDs).Find(&courses).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	var offers []course.CourseOffer
	if err := db.
		Where("course_id IN ? AND status = ? AND is_active = true AND is_deleted = false", courseIDs, "APPROVED").
		Where("starts_at <= ? AND ends_at >= ?", now, now).
		Find(&offers).Error; err != nil {
		return nil, err
	}

	offerByCourse := make(map[uint]course.CourseOffer, len(offers))
	for _, o := range offers {
		// Keep the deepest discount if somehow more than one offer is live
		if existing, ok := offerByCourse[o.CourseID]; !ok || o.DiscountPct > existing.DiscountPct {
			offerByCourse[o.CourseID] = o
		}
	}

	for _, c := range courses {
		cp := CoursePrice{
			CourseID:       c.ID,
			InstructorID:   c.InstructorID,
			ListPrice:      c.Price,
			EffectivePrice: c.Price,
		}
		if o, ok := offerByCourse[c.ID]; ok {
			cp.HasOffer = true
			cp.OfferPrice = Truncate2(c.Price * (1 - o.DiscountPct/100))
			cp.EffectivePrice = cp.OfferPrice
		}
		result[c.ID] = cp
	}

	return result, nil
}

// EffectivePrices is the plain map form of Resolve
func EffectivePrices(db *gorm.DB, courseIDs []uint) (map[uint]float64, error) {
	resolved, err := Resolve(db, courseIDs)
	if err != nil {
		return nil, err
	}
	prices := make(map[uint]float64, len(resolved))
	for id, cp := range resolved {
		prices[id] = cp.EffectivePrice
	}
	return prices, nil
}
