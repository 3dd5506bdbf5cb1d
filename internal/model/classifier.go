// Package model loads the frozen classifier artifacts and runs inference,
// including the test-time-augmentation policy.
package model

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/tomatoguard/diagnosis-api/internal/imageproc"
)

// Classifier is a frozen single-label classifier. Predict is a pure function
// of the tensor: it returns the full probability distribution over the
// model's class vocabulary and mutates no shared state.
type Classifier interface {
	Predict(t *imageproc.Tensor) ([]float64, error)
	Close() error
}

var ortInit sync.Once

// onnxClassifier wraps an ONNX Runtime session with preallocated I/O tensors.
// Session I/O buffers are reused, so Run is serialized with a mutex.
type onnxClassifier struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	metadata     Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// NewONNXClassifier loads a model artifact and its metadata sidecar.
func NewONNXClassifier(modelPath, metadataPath string) (Classifier, Metadata, error) {
	var initErr error
	ortInit.Do(func() {
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		return nil, Metadata{}, errors.Wrap(initErr, "initialize ONNX environment")
	}

	metaFile, err := os.ReadFile(metadataPath)
	if err != nil {
		return nil, Metadata{}, errors.Wrap(err, "read model metadata")
	}
	var metadata Metadata
	if err := json.Unmarshal(metaFile, &metadata); err != nil {
		return nil, Metadata{}, errors.Wrap(err, "parse model metadata")
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		return nil, Metadata{}, errors.Wrap(err, "create input tensor")
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, Metadata{}, errors.Wrap(err, "create output tensor")
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, Metadata{}, errors.Wrap(err, "create ONNX session")
	}

	return &onnxClassifier{
		session:      session,
		metadata:     metadata,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, metadata, nil
}

func (c *onnxClassifier) Predict(t *imageproc.Tensor) ([]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	in := c.inputTensor.GetData()
	if len(t.Data) != len(in) {
		return nil, errors.Errorf("input size %d, model expects %d", len(t.Data), len(in))
	}
	copy(in, t.Data)

	if err := c.session.Run(); err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}

	raw := c.outputTensor.GetData()
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out, nil
}

func (c *onnxClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inputTensor != nil {
		c.inputTensor.Destroy()
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
	}
	if c.session != nil {
		c.session.Destroy()
	}
	return nil
}
