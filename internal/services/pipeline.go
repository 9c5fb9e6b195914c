package services

import (
	"gocv.io/x/gocv"

	"github.com/thinh1311ss/IE105/internal/dto"
	"github.com/thinh1311ss/IE105/internal/logger"
	"github.com/thinh1311ss/IE105/internal/services/ai"
)

// Decoder turns upload bytes into a pixel buffer.
type Decoder interface {
	Decode(raw []byte, ext string) (gocv.Mat, error)
}

// UploadSaver persists a debug copy of a decoded upload.
type UploadSaver interface {
	Save(img gocv.Mat, ext string) (string, error)
}

// Scorer computes a fire probability for a decoded image.
type Scorer interface {
	Score(img gocv.Mat) float64
}

// Notifier dispatches a fire alert to the given recipient.
type Notifier interface {
	SendAlert(recipient string, score float64, imagePath string) bool
}

// Pipeline runs one upload through decode, debug save, scoring, and the
// conditional alert. Decode failures propagate to the caller; everything
// after a successful decode degrades gracefully.
type Pipeline struct {
	decoder  Decoder
	store    UploadSaver
	scorer   Scorer
	notifier Notifier
	logger   *logger.Logger
}

func NewPipeline(decoder Decoder, store UploadSaver, scorer Scorer, notifier Notifier, logger *logger.Logger) *Pipeline {
	return &Pipeline{
		decoder:  decoder,
		store:    store,
		scorer:   scorer,
		notifier: notifier,
		logger:   logger,
	}
}

func (p *Pipeline) Process(raw []byte, ext, email string) (dto.Prediction, error) {
	img, err := p.decoder.Decode(raw, ext)
	if err != nil {
		return dto.Prediction{}, err
	}
	defer img.Close()

	// Non-fatal: the debug copy is an audit artifact, not part of the result.
	imagePath, err := p.store.Save(img, ext)
	if err != nil {
		p.logger.Warning("Could not save debug copy of upload: %v", err)
		imagePath = ""
	} else {
		p.logger.Info("Saved upload to %s", imagePath)
	}

	score := p.scorer.Score(img)
	isFire := score > ai.Threshold

	result := "no_fire"
	if isFire {
		result = "fire"
	}
	p.logger.Info("Prediction: %s (score %.4f, threshold %.2f)", result, score, ai.Threshold)

	if isFire {
		p.logger.Info("Fire detected, sending alert to %s", email)
		if !p.notifier.SendAlert(email, score, imagePath) {
			p.logger.Error("Fire alert to %s was not delivered", email)
		}
	}

	return dto.Prediction{
		IsFire:    isFire,
		Score:     score,
		ImagePath: imagePath,
	}, nil
}
