package sanitizer

import (
	"regexp"
	"strings"

	"sarpras/pkg/model"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reSpaces       = regexp.MustCompile(`\s+`)
	reInvalidCode  = regexp.MustCompile(`[^A-Z0-9_-]+`)
	reRepeatedDash = regexp.MustCompile(`-{2,}`)
)

func trimAndUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SanitizeCode normalizes asset, item and driver codes: "hall 1" -> "HALL-1".
func SanitizeCode(input string) string {
	p := Pipeline{
		trimAndUpper,
		func(s string) string { return reSpaces.ReplaceAllString(s, "-") },
		func(s string) string { return reInvalidCode.ReplaceAllString(s, "") },
		func(s string) string { return reRepeatedDash.ReplaceAllString(s, "-") },
		func(s string) string { return strings.Trim(s, "-") },
	}
	return p.Apply(input)
}

func SanitizeName(input string) string {
	return TrimAndNormalize(input)
}

func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

// SanitizeBorrowedItems drops lines with a non-positive quantity and
// normalizes item codes. Duplicate codes are kept; the availability checker
// aggregates them.
func SanitizeBorrowedItems(items []model.BorrowedItem) []model.BorrowedItem {
	if items == nil {
		return nil
	}
	out := make([]model.BorrowedItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		out = append(out, model.BorrowedItem{
			ItemCode: SanitizeCode(item.ItemCode),
			Quantity: item.Quantity,
		})
	}
	return out
}

// SanitizeReservation normalizes a reservation in place.
func SanitizeReservation(r *model.Reservation) {
	r.AssetCode = SanitizeCode(r.AssetCode)
	r.AssetName = SanitizeName(r.AssetName)
	r.Purpose = TrimAndNormalize(r.Purpose)
	r.StartTime = r.StartTime.UTC()
	r.EndTime = r.EndTime.UTC()

	if r.Vehicle != nil {
		r.Vehicle.DriverRef = SanitizeCode(r.Vehicle.DriverRef)
	}
	if r.Room != nil {
		r.Room.Items = SanitizeBorrowedItems(r.Room.Items)
	}
}

func SanitizeReservationUpdate(u *model.ReservationUpdate) {
	u.AssetCode = SanitizeCode(u.AssetCode)
	if u.StartTime != nil {
		t := u.StartTime.UTC()
		u.StartTime = &t
	}
	if u.EndTime != nil {
		t := u.EndTime.UTC()
		u.EndTime = &t
	}
	if u.Purpose != nil {
		p := TrimAndNormalize(*u.Purpose)
		u.Purpose = &p
	}
	if u.DriverRef != nil {
		d := SanitizeCode(*u.DriverRef)
		u.DriverRef = &d
	}
	if u.Items != nil {
		items := SanitizeBorrowedItems(*u.Items)
		u.Items = &items
	}
}

func SanitizeAsset(a *model.Asset) {
	a.Code = SanitizeCode(a.Code)
	a.Kind = model.AssetKind(strings.ToLower(strings.TrimSpace(string(a.Kind))))
	a.Name = SanitizeName(a.Name)
	a.Location = TrimAndNormalize(a.Location)
	a.Description = strings.TrimSpace(a.Description)
}

func SanitizeAssetUpdate(u *model.AssetUpdate) {
	u.Name = SanitizeName(u.Name)
	if u.Location != nil {
		l := TrimAndNormalize(*u.Location)
		u.Location = &l
	}
	if u.Description != nil {
		d := strings.TrimSpace(*u.Description)
		u.Description = &d
	}
}

func SanitizeDriver(d *model.Driver, defaultRegion string) {
	d.Code = SanitizeCode(d.Code)
	d.Name = SanitizeName(d.Name)
	d.Phone = SanitizePhone(d.Phone, defaultRegion)
}

func SanitizeDriverUpdate(u *model.DriverUpdate, defaultRegion string) {
	u.Name = SanitizeName(u.Name)
	u.Phone = SanitizePhone(u.Phone, defaultRegion)
}
