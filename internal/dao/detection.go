package dao

import (
	"fmt"
	"strings"
)

type DetectionBox struct {
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
	Confidence float32 `json:"confidence"`
	ClassId    int     `json:"classId"`
	Label      string  `json:"label"`
}

const noDetections = "(no detections)"

// SummaryLabel turns a class name into a single word so that it survives the
// "<count> <label>" summary format.
func SummaryLabel(label string) string {
	return strings.Join(strings.Fields(label), "_")
}

// Summarize renders boxes as the detector's verbose text, e.g. "2 tomato, 1 leaf".
// Labels are listed in order of first appearance.
func Summarize(boxes []*DetectionBox) string {
	if len(boxes) == 0 {
		return noDetections
	}
	var order []string
	n := make(map[string]int)
	for _, box := range boxes {
		label := SummaryLabel(box.Label)
		if label == "" {
			continue
		}
		if _, ok := n[label]; !ok {
			order = append(order, label)
		}
		n[label]++
	}
	if len(order) == 0 {
		return noDetections
	}
	parts := make([]string, 0, len(order))
	for _, label := range order {
		parts = append(parts, fmt.Sprintf("%d %s", n[label], label))
	}
	return strings.Join(parts, ", ")
}

// ParseLabels splits a comma separated label list; the index is the class id.
func ParseLabels(labels string) map[int]string {
	labelMap := make(map[int]string)
	if strings.TrimSpace(labels) == "" {
		return labelMap
	}
	for i, label := range strings.Split(labels, ",") {
		labelMap[i] = strings.TrimSpace(label)
	}
	return labelMap
}

// x1, y1, x2, y2, confidence, class_id
const detectionStride = 6

// DecodeDetections turns a flat [N, 6] tensor into boxes, keeping rows at or
// above confThreshold. With a label map, rows whose class has no label are
// dropped; without one, classes are named "class_<id>".
func DecodeDetections(detections []float32, confThreshold float32, labelMap map[int]string) []*DetectionBox {
	var boxes []*DetectionBox
	for i := 0; i+detectionStride <= len(detections); i += detectionStride {
		confidence := detections[i+4]
		if confidence < confThreshold {
			continue
		}
		classID := int(detections[i+5])

		className := fmt.Sprintf("class_%d", classID)
		if len(labelMap) > 0 {
			var exists bool
			className, exists = labelMap[classID]
			if !exists || className == "" {
				continue
			}
		}

		boxes = append(boxes, &DetectionBox{
			X1:         int(detections[i]),
			Y1:         int(detections[i+1]),
			X2:         int(detections[i+2]),
			Y2:         int(detections[i+3]),
			Confidence: confidence,
			ClassId:    classID,
			Label:      className,
		})
	}
	return boxes
}
