package service

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/parkeasy/parkeasy-backend/internal/plate"
)

// RekognitionPlateReader reads license plates from vehicle photos using AWS
// Rekognition text detection.
type RekognitionPlateReader struct {
	client *rekognition.Client
}

// NewRekognitionPlateReader creates a PlateReader over a Rekognition client.
func NewRekognitionPlateReader(client *rekognition.Client) *RekognitionPlateReader {
	return &RekognitionPlateReader{client: client}
}

// ReadPlate runs DetectText on the image and picks the highest-confidence
// line that looks like a plate.
func (r *RekognitionPlateReader) ReadPlate(ctx context.Context, image []byte) (string, error) {
	result, err := r.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		return "", err
	}

	var best string
	var bestConfidence float32
	for _, detection := range result.TextDetections {
		if detection.Type != types.TextTypesLine && detection.Type != types.TextTypesWord {
			continue
		}
		if detection.DetectedText == nil || detection.Confidence == nil {
			continue
		}
		candidate := plate.Normalize(*detection.DetectedText)
		if !plate.Valid(candidate) {
			continue
		}
		if *detection.Confidence > bestConfidence {
			best = candidate
			bestConfidence = *detection.Confidence
		}
	}

	if best == "" {
		log.Printf("plate reader: no plate-shaped text in %d detections", len(result.TextDetections))
		return "", ErrPlateUnreadable
	}
	return best, nil
}
