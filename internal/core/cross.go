package core

import (
	"context"
	"strings"
	"time"

	"mendel/pkg/domain"
	"mendel/pkg/genetics"
)

// FormField names the part of a cross form a validation belongs to.
type FormField string

const (
	FieldParent1       FormField = "parent1"
	FieldParent2       FormField = "parent2"
	FieldCompatibility FormField = "compatibility"
)

// Label is the English prefix shown before a field's error, or "" for
// form-level errors.
func (f FormField) Label() string {
	switch f {
	case FieldParent1:
		return "Parent 1"
	case FieldParent2:
		return "Parent 2"
	}
	return ""
}

// FormValidation is the live validation of a cross form. Error holds the
// single message to show: parent 1 first, then parent 2, then compatibility.
// Its message carries the field label; ErrorField names the field.
type FormValidation struct {
	Parent1       genetics.Validation  `json:"parent1"`
	Parent2       genetics.Validation  `json:"parent2"`
	Compatibility genetics.Validation  `json:"compatibility"`
	Error         *genetics.Validation `json:"error,omitempty"`
	ErrorField    FormField            `json:"errorField,omitempty"`
	CanSubmit     bool                 `json:"canSubmit"`
}

// ValidateForm checks both parents for arity and against each other.
// Compatibility is only evaluated once both parents are individually valid.
func ValidateForm(arity genetics.CrossArity, parent1, parent2 string) FormValidation {
	form := FormValidation{
		Parent1:       genetics.Validate(parent1, arity),
		Parent2:       genetics.Validate(parent2, arity),
		Compatibility: genetics.Validation{Valid: true},
	}
	if form.Parent1.Valid && form.Parent2.Valid {
		form.Compatibility = genetics.ValidateParentCompatibility(parent1, parent2)
	}
	checks := []struct {
		field FormField
		v     genetics.Validation
	}{
		{FieldParent1, form.Parent1},
		{FieldParent2, form.Parent2},
		{FieldCompatibility, form.Compatibility},
	}
	for _, c := range checks {
		if c.v.Valid {
			continue
		}
		v := c.v
		if label := c.field.Label(); label != "" {
			v.Message = label + ": " + v.Message
		}
		form.Error = &v
		form.ErrorField = c.field
		break
	}
	filled := strings.TrimSpace(parent1) != "" && strings.TrimSpace(parent2) != ""
	form.CanSubmit = filled && form.Error == nil
	return form
}

// crossState is what the cache keeps per session. Views derived from it are
// rebuilt on every read so inheritance changes apply without resubmitting.
type crossState struct {
	Arity      genetics.CrossArity
	Parent1    string
	Parent2    string
	Records    []genetics.CrossRecord
	ComputedAt time.Time
}

// RecordSummary is one entry of a poly cross list.
type RecordSummary struct {
	genetics.CrossRecord
	Label string `json:"label"`
}

// CrossResult is the rendered outcome of a submitted cross. Mono and di
// crosses fill Law, Square and the distributions; poly crosses list one
// record per gene instead.
type CrossResult struct {
	SessionID  string                  `json:"sessionId"`
	Arity      genetics.CrossArity     `json:"arity"`
	Parent1    string                  `json:"parent1"`
	Parent2    string                  `json:"parent2"`
	Law        string                  `json:"law,omitempty"`
	Square     *genetics.PunnettSquare `json:"square,omitempty"`
	Genotypes  []genetics.Entry        `json:"genotypes,omitempty"`
	Phenotypes []genetics.Entry        `json:"phenotypes,omitempty"`
	Records    []RecordSummary         `json:"records,omitempty"`
	ComputedAt time.Time               `json:"computedAt"`
}

// RecordDetail is the per-gene view of one poly cross record.
type RecordDetail struct {
	Record     RecordSummary          `json:"record"`
	Square     genetics.PunnettSquare `json:"square"`
	Genotypes  []genetics.Entry       `json:"genotypes"`
	Phenotypes []genetics.Entry       `json:"phenotypes,omitempty"`
}

func summarize(records []genetics.CrossRecord) []RecordSummary {
	out := make([]RecordSummary, len(records))
	for i, r := range records {
		out[i] = RecordSummary{CrossRecord: r, Label: r.Label()}
	}
	return out
}

func phenotypeEntries(offspring []string, cfg genetics.InheritanceConfig) []genetics.Entry {
	d := genetics.AggregatePhenotypes(offspring, cfg)
	if !d.ShowPhenotypes() {
		return nil
	}
	return d.Entries()
}

func (st crossState) view(session domain.Session) CrossResult {
	res := CrossResult{
		SessionID:  session.ID,
		Arity:      st.Arity,
		Parent1:    st.Parent1,
		Parent2:    st.Parent2,
		ComputedAt: st.ComputedAt,
	}
	if st.Arity == genetics.Poly {
		res.Records = summarize(st.Records)
		return res
	}
	sq := genetics.Square(st.Parent1, st.Parent2)
	offspring := sq.Offspring()
	res.Law = st.Arity.Law()
	res.Square = &sq
	res.Genotypes = genetics.Aggregate(offspring).Entries()
	res.Phenotypes = phenotypeEntries(offspring, session.Inheritance)
	return res
}

// SubmitCross validates the parents against the session arity, computes the
// cross and makes it the session's current cross.
func (s *Service) SubmitCross(ctx context.Context, id, parent1, parent2 string) (CrossResult, error) {
	var res CrossResult
	err := s.observe(ctx, "submit_cross", id, false, func(ctx context.Context) error {
		session, err := s.session(id)
		if err != nil {
			return err
		}
		form := ValidateForm(session.Arity, parent1, parent2)
		if !form.CanSubmit {
			return ErrFormInvalid{Form: form}
		}
		p1 := genetics.Normalize(parent1)
		p2 := genetics.Normalize(parent2)
		st := crossState{
			Arity:      session.Arity,
			Parent1:    p1,
			Parent2:    p2,
			Records:    genetics.BuildCrossRecords(p1, p2),
			ComputedAt: s.now(),
		}
		if session, err = s.ensureGenes(ctx, session, genetics.Genes(p1)); err != nil {
			return err
		}
		s.crosses.SetDefault(id, st)
		if co, ok := s.metrics.(crossObserver); ok {
			co.ObserveCross(string(st.Arity))
		}
		res = st.view(session)
		return nil
	})
	return res, err
}

// ensureGenes registers default inheritance for genes the session has not
// seen. The store is only written when something was added.
func (s *Service) ensureGenes(ctx context.Context, session domain.Session, genes []genetics.GeneID) (domain.Session, error) {
	probe := session.Inheritance.Clone()
	if probe == nil {
		probe = genetics.InheritanceConfig{}
	}
	if !probe.Ensure(genes...) {
		return session, nil
	}
	var updated domain.Session
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateSession(session.ID, func(sess *domain.Session) error {
			if sess.Inheritance == nil {
				sess.Inheritance = genetics.InheritanceConfig{}
			}
			sess.Inheritance.Ensure(genes...)
			return nil
		})
		return err
	})
	return updated, err
}

func (s *Service) current(id string) (domain.Session, crossState, error) {
	session, err := s.session(id)
	if err != nil {
		return domain.Session{}, crossState{}, err
	}
	v, ok := s.crosses.Get(id)
	if !ok {
		return session, crossState{}, ErrNoActiveCross
	}
	return session, v.(crossState), nil
}

// CurrentCross re-renders the session's current cross under its present
// inheritance configuration.
func (s *Service) CurrentCross(ctx context.Context, id string) (CrossResult, error) {
	var res CrossResult
	err := s.observe(ctx, "current_cross", id, false, func(context.Context) error {
		session, st, err := s.current(id)
		if err != nil {
			return err
		}
		res = st.view(session)
		return nil
	})
	return res, err
}

// CrossDetail renders the single-gene cross behind record index.
func (s *Service) CrossDetail(ctx context.Context, id string, index int) (RecordDetail, error) {
	var detail RecordDetail
	err := s.observe(ctx, "cross_detail", id, false, func(context.Context) error {
		session, st, err := s.current(id)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(st.Records) {
			return ErrRecordOutOfRange{Index: index, Count: len(st.Records)}
		}
		rec := st.Records[index]
		sq := rec.Square()
		offspring := sq.Offspring()
		detail = RecordDetail{
			Record:     RecordSummary{CrossRecord: rec, Label: rec.Label()},
			Square:     sq,
			Genotypes:  rec.Distribution().Entries(),
			Phenotypes: phenotypeEntries(offspring, session.Inheritance),
		}
		return nil
	})
	return detail, err
}

// GenotypeProbability computes the chance of a full multi-gene genotype in
// the current cross. The desired genotype is first checked as a poly
// genotype; failures come back as an invalid result, not an error.
func (s *Service) GenotypeProbability(ctx context.Context, id, desired string) (genetics.ProbabilityResult, error) {
	var res genetics.ProbabilityResult
	err := s.observe(ctx, "genotype_probability", id, false, func(context.Context) error {
		_, st, err := s.current(id)
		if err != nil {
			return err
		}
		if v := genetics.Validate(desired, genetics.Poly); !v.Valid {
			res = genetics.ProbabilityResult{Code: v.Code, Args: v.Args, Message: v.Message}
			return nil
		}
		res = genetics.GenotypeProbability(desired, st.Records)
		return nil
	})
	return res, err
}

// PhenotypeProbability computes the chance of the selected phenotype class
// per gene, using the session's inheritance configuration.
func (s *Service) PhenotypeProbability(ctx context.Context, id string, selections []string) (genetics.ProbabilityResult, error) {
	var res genetics.ProbabilityResult
	err := s.observe(ctx, "phenotype_probability", id, false, func(context.Context) error {
		session, st, err := s.current(id)
		if err != nil {
			return err
		}
		targets := make([]genetics.PhenotypeTarget, len(selections))
		for i, raw := range selections {
			targets[i] = genetics.PhenotypeTarget(raw)
		}
		res = genetics.PhenotypeProbability(targets, st.Records, session.Inheritance)
		return nil
	})
	return res, err
}
