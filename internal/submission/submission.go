// Package submission validates raw form input and builds immutable submission
// values. A submission can only be constructed through its builder, so holding
// one is proof that every field passed validation.
package submission

import "strings"

// Kind identifies which form a submission came from.
type Kind string

const (
	KindDiscussProject Kind = "discuss_project"
	KindReview         Kind = "review"
)

// Submission is a validated form entry of either kind.
type Submission interface {
	Kind() Kind
}

// ValidationError aggregates every failed field of one submission, in the
// declared field order of its kind.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return e.Detail()
}

// Detail joins the per-field reasons with ". ", matching the API's 422 shape.
func (e *ValidationError) Detail() string {
	reasons := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		reasons[i] = f.Reason
	}
	return strings.Join(reasons, ". ")
}

func (e *ValidationError) add(err error) {
	if fe, ok := err.(FieldError); ok {
		e.Fields = append(e.Fields, fe)
		return
	}
	e.Fields = append(e.Fields, FieldError{Field: "body", Reason: err.Error()})
}

// DiscussProjectForm is the raw, unvalidated input of the discuss-project form.
type DiscussProjectForm struct {
	Name        string
	Email       string
	Phone       string
	ProductName string
	Comment     string
}

// DiscussProject is a validated discuss-project submission.
type DiscussProject struct {
	name        string
	email       string
	phone       string
	productName string
	comment     string
}

func (DiscussProject) Kind() Kind        { return KindDiscussProject }
func (s DiscussProject) Name() string    { return s.name }
func (s DiscussProject) Email() string   { return s.email }
func (s DiscussProject) Phone() string   { return s.phone }
func (s DiscussProject) Comment() string { return s.comment }

// ProductName is optional free text; empty means not provided.
func (s DiscussProject) ProductName() string { return s.productName }

// NewDiscussProject runs every field validator in declared order
// (name, email, phone, comment) and collects all failures.
func NewDiscussProject(f DiscussProjectForm) (DiscussProject, error) {
	var verr ValidationError
	var s DiscussProject
	var err error

	if s.name, err = Name(f.Name); err != nil {
		verr.add(err)
	}
	if s.email, err = Email(f.Email); err != nil {
		verr.add(err)
	}
	if s.phone, err = Phone(f.Phone); err != nil {
		verr.add(err)
	}
	if s.comment, err = Comment(f.Comment); err != nil {
		verr.add(err)
	}
	s.productName = strings.TrimSpace(f.ProductName)

	if len(verr.Fields) > 0 {
		return DiscussProject{}, &verr
	}
	return s, nil
}

// ReviewForm is the raw, unvalidated input of the review form.
type ReviewForm struct {
	Name    string
	Phone   string
	Rating  int
	Comment string
}

// Review is a validated review submission.
type Review struct {
	name    string
	phone   string
	rating  int
	comment string
}

func (Review) Kind() Kind        { return KindReview }
func (s Review) Name() string    { return s.name }
func (s Review) Phone() string   { return s.phone }
func (s Review) Rating() int     { return s.rating }
func (s Review) Comment() string { return s.comment }

// NewReview runs every field validator in declared order
// (name, phone, rating, comment) and collects all failures.
func NewReview(f ReviewForm) (Review, error) {
	var verr ValidationError
	var s Review
	var err error

	if s.name, err = Name(f.Name); err != nil {
		verr.add(err)
	}
	if s.phone, err = Phone(f.Phone); err != nil {
		verr.add(err)
	}
	if s.rating, err = Rating(f.Rating); err != nil {
		verr.add(err)
	}
	if s.comment, err = Comment(f.Comment); err != nil {
		verr.add(err)
	}

	if len(verr.Fields) > 0 {
		return Review{}, &verr
	}
	return s, nil
}
