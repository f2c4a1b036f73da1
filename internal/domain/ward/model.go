package ward

import (
	"fmt"
	"time"

	"github.com/panacea/panacea/internal/domain/patient"
)

type Type string

const (
	TypeGeneral   Type = "General"
	TypeICU       Type = "ICU"
	TypeEmergency Type = "Emergency"
	TypeMaternity Type = "maternity"
	TypePediatric Type = "Pediatric"
)

// Bed is embedded in its ward. PatientID is set only while occupied.
type Bed struct {
	ID        string           `json:"_id" bson:"_id"`
	Number    string           `json:"number" bson:"number"`
	Occupied  bool             `json:"isOccupied" bson:"isOccupied"`
	PatientID string           `json:"patientId,omitempty" bson:"patientId,omitempty"`
	Patient   *patient.Summary `json:"patient,omitempty" bson:"-"`
}

type Ward struct {
	ID        string    `json:"_id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Type      Type      `json:"type" bson:"type"`
	Capacity  int       `json:"capacity" bson:"capacity"`
	Occupied  int       `json:"occupied" bson:"occupied"`
	Beds      []Bed     `json:"beds" bson:"beds"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (w *Ward) Bed(id string) (*Bed, bool) {
	for i := range w.Beds {
		if w.Beds[i].ID == id {
			return &w.Beds[i], true
		}
	}
	return nil, false
}

// Occupancy sums capacity and occupied beds over every ward.
type Occupancy struct {
	Capacity int `bson:"capacity"`
	Occupied int `bson:"occupied"`
}

type AdmitRequest struct {
	PatientID string `json:"patientId"`
	BedID     string `json:"bedId"`
}

type DischargeRequest struct {
	BedID string `json:"bedId"`
}

type layoutEntry struct {
	name     string
	kind     Type
	capacity int
}

var defaultLayout = []layoutEntry{
	{"Emergency Room", TypeEmergency, 6},
	{"ICU Alpha", TypeICU, 4},
	{"General Ward A", TypeGeneral, 8},
}

// DefaultLayout builds the initial wards with empty beds numbered after the
// ward's first letter, e.g. E-1.
func DefaultLayout(newID func() string, at time.Time) []*Ward {
	out := make([]*Ward, 0, len(defaultLayout))
	for _, l := range defaultLayout {
		w := &Ward{
			ID:        newID(),
			Name:      l.name,
			Type:      l.kind,
			Capacity:  l.capacity,
			Beds:      make([]Bed, l.capacity),
			CreatedAt: at,
			UpdatedAt: at,
		}
		for i := range w.Beds {
			w.Beds[i] = Bed{ID: newID(), Number: fmt.Sprintf("%c-%d", l.name[0], i+1)}
		}
		out = append(out, w)
	}
	return out
}
