package ai

import (
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"github.com/mattn/go-tflite"
	"gocv.io/x/gocv"

	"github.com/thinh1311ss/IE105/internal/config"
	"github.com/thinh1311ss/IE105/internal/logger"
)

// Threshold is the probability cutoff separating "fire" from "no_fire".
const Threshold = 0.5

// Scorer computes a fire probability for a decoded image using a TFLite
// binary classifier loaded once at startup.
type Scorer struct {
	model       *tflite.Model
	options     *tflite.InterpreterOptions
	interpreter *tflite.Interpreter
	width       int
	height      int
	logger      *logger.Logger
	mu          sync.Mutex // a single interpreter mutates its tensor buffers during Invoke
}

func NewScorer(cfg *config.Config, logger *logger.Logger) (*Scorer, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	model := tflite.NewModelFromFile(cfg.ModelPath)
	if model == nil {
		return nil, fmt.Errorf("failed to load model: %s", cfg.ModelPath)
	}

	options := tflite.NewInterpreterOptions()
	options.SetNumThread(2)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("failed to create interpreter")
	}

	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("failed to allocate tensors")
	}

	// NHWC input: [1, height, width, 3]
	input := interpreter.GetInputTensor(0)
	scorer := &Scorer{
		model:       model,
		options:     options,
		interpreter: interpreter,
		height:      input.Dim(1),
		width:       input.Dim(2),
		logger:      logger,
	}

	logger.Info("Loaded TFLite model %s with input size %dx%d", cfg.ModelPath, scorer.height, scorer.width)
	return scorer, nil
}

// Score returns the fire probability in [0,1] for the given image. Any
// internal failure degrades to 0.0 so a bad frame never breaks a request.
// Applying the classification threshold is left to the caller.
func (s *Scorer) Score(img gocv.Mat) float64 {
	if img.Empty() {
		s.logger.Warning("Empty input image, returning default score")
		return 0.0
	}

	score, err := s.run(img)
	if err != nil {
		s.logger.Error("Inference failed: %v", err)
		return 0.0
	}

	return score
}

func (s *Scorer) run(img gocv.Mat) (float64, error) {
	// Stretch to the model input size, matching how the model was trained.
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, image.Pt(s.width, s.height), 0, 0, gocv.InterpolationLinear)

	normalized := gocv.NewMat()
	defer normalized.Close()
	resized.ConvertToWithParams(&normalized, gocv.MatTypeCV32F, 1.0/255.0, 0)

	pixels, err := normalized.DataPtrFloat32()
	if err != nil {
		return 0, fmt.Errorf("could not read pixel data: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	input := s.interpreter.GetInputTensor(0)
	if len(pixels) != len(input.Float32s()) {
		return 0, fmt.Errorf("pixel count %d does not match input tensor size %d", len(pixels), len(input.Float32s()))
	}
	copy(input.Float32s(), pixels)

	if status := s.interpreter.Invoke(); status != tflite.OK {
		return 0, fmt.Errorf("interpreter invoke failed")
	}

	raw := float64(s.interpreter.GetOutputTensor(0).Float32s()[0])
	s.logger.Debug("Raw model output: %f", raw)

	return Normalize(raw), nil
}

// Normalize maps a raw model output to a probability. Outputs already in
// [0,1] pass through unchanged; unbounded logits go through a sigmoid.
func Normalize(raw float64) float64 {
	if raw < 0 || raw > 1 {
		return 1 / (1 + math.Exp(-raw))
	}
	return raw
}

// InputSize returns the model's expected (height, width).
func (s *Scorer) InputSize() (int, int) {
	return s.height, s.width
}

func (s *Scorer) Close() {
	if s.interpreter != nil {
		s.interpreter.Delete()
	}
	if s.options != nil {
		s.options.Delete()
	}
	if s.model != nil {
		s.model.Delete()
	}
}
