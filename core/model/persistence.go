package model

import (
	"io"
	"os"

	"github.com/YuminosukeSato/ratfit/pkg/errors"
)

// SaveWeights はモデルの重みをJSONファイルに保存する
//
// 使用例:
//
//	w, err := est.ExportWeights()
//	err = model.SaveWeights(w, "fit.json")
func SaveWeights(w *Weights, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer file.Close()

	return WriteWeights(w, file)
}

// LoadWeights はJSONファイルから重みを読み込む
func LoadWeights(filename string) (*Weights, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return ReadWeights(file)
}

// WriteWeights は重みを検証してからio.Writerに書き出す
func WriteWeights(w *Weights, out io.Writer) error {
	if err := w.Validate(); err != nil {
		return errors.Wrap(err, "invalid weights")
	}
	data, err := w.ToJSON()
	if err != nil {
		return errors.Wrap(err, "failed to encode weights")
	}
	if _, err := out.Write(data); err != nil {
		return errors.Wrap(err, "failed to write weights")
	}
	return nil
}

// ReadWeights はio.Readerから重みを読み込んで検証する
func ReadWeights(r io.Reader) (*Weights, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read weights")
	}
	w := &Weights{}
	if err := w.FromJSON(data); err != nil {
		return nil, errors.Wrap(err, "failed to decode weights")
	}
	if err := w.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid weights")
	}
	return w, nil
}
