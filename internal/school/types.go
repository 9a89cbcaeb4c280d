// Package school is the client of the school REST backend: classes,
// students and subjects.
package school

import "encoding/json"

// Class is a school class. JSON names follow the backend.
type Class struct {
	ID           int64     `json:"codClass,omitempty" validate:"gte=0"`
	Name         string    `json:"nomClass" validate:"required"`
	StudentCount int       `json:"nbreEtud" validate:"gte=0"`
	Subjects     []Subject `json:"matieres,omitempty" validate:"dive"`
}

// Subject is a taught subject ("matière").
type Subject struct {
	ID          int64  `json:"codMat,omitempty" validate:"gte=0"`
	Title       string `json:"intMat" validate:"required"`
	Description string `json:"description"`
}

// Student belongs to one class. On the wire the class is a nested
// {"classe": {"codClass": n}} reference.
type Student struct {
	ID        int64  `json:"id,omitempty" validate:"gte=0"`
	ClassID   int64  `json:"-" validate:"gte=0"`
	LastName  string `json:"nom" validate:"required"`
	FirstName string `json:"prenom" validate:"required"`
	BirthDate string `json:"dateNais" validate:"required"`
}

type classRef struct {
	ID int64 `json:"codClass"`
}

type subjectRef struct {
	ID int64 `json:"codMat"`
}

type studentWire struct {
	ID        int64     `json:"id,omitempty"`
	Class     *classRef `json:"classe,omitempty"`
	ClassID   int64     `json:"codClass,omitempty"`
	LastName  string    `json:"nom"`
	FirstName string    `json:"prenom"`
	BirthDate string    `json:"dateNais"`
}

func (s Student) MarshalJSON() ([]byte, error) {
	w := studentWire{ID: s.ID, LastName: s.LastName, FirstName: s.FirstName, BirthDate: s.BirthDate}
	if s.ClassID != 0 {
		w.Class = &classRef{ID: s.ClassID}
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts the nested class reference or a flat codClass.
func (s *Student) UnmarshalJSON(data []byte) error {
	var w studentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Student{ID: w.ID, ClassID: w.ClassID, LastName: w.LastName, FirstName: w.FirstName, BirthDate: w.BirthDate}
	if w.Class != nil {
		s.ClassID = w.Class.ID
	}
	return nil
}

// FullName returns "Prénom Nom".
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// classSubjectLink is the body of POST /matiere/addToClasse.
type classSubjectLink struct {
	Class   classRef   `json:"classe"`
	Subject subjectRef `json:"matiere"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
