package main

import (
	"encoding/gob"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wlattner/ambitree/tree"
)

// model is the CLI's persistence envelope around a frozen *tree.Tree:
// the core's own MarshalBinary/UnmarshalBinary stays gob-free (it is the
// compatibility-relevant wire format spec.md names), so this wraps that
// flat buffer with run metadata the way the teacher's Model wraps
// forest.Classifier with fit duration and variable names.
type model struct {
	RunID         string
	FitDuration   time.Duration
	NumSamples    int
	VarNames      []string
	PositiveClass int
	Criterion     tree.Criterion
	FB, FC        int
	Classes       []int
	Buf           []byte

	tr *tree.Tree
}

func newModel(tr *tree.Tree, fitDuration time.Duration, numSamples int, varNames []string, positiveClass int, criterion tree.Criterion, fb, fc int, classes []int) (*model, error) {
	buf, err := tr.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "encoding frozen tree")
	}
	return &model{
		RunID:         uuid.NewString(),
		FitDuration:   fitDuration,
		NumSamples:    numSamples,
		VarNames:      varNames,
		PositiveClass: positiveClass,
		Criterion:     criterion,
		FB:            fb,
		FC:            fc,
		Classes:       classes,
		Buf:           buf,
		tr:            tr,
	}, nil
}

func (m *model) Save(w io.Writer) error {
	return errors.Wrap(gob.NewEncoder(w).Encode(m), "writing model")
}

func loadModel(r io.Reader) (*model, error) {
	var m model
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "reading model")
	}
	m.tr = &tree.Tree{}
	if err := m.tr.UnmarshalBinary(m.Buf); err != nil {
		return nil, errors.Wrap(err, "decoding frozen tree")
	}
	m.tr.SetMeta(m.Criterion, m.FB, m.FC, m.Classes)
	return &m, nil
}
