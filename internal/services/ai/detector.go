package ai

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"gocv.io/x/gocv"

	"homewatch/internal/logger"
	"homewatch/internal/models"
)

// DetectorService runs the object detection network over captured
// frames. It is the implementation behind the detector boundary: a
// frame goes in, raw class/confidence/bbox observations come out. The
// rest of the system only consumes models.RawDetection, so queries and
// zone logic keep working when no model files are present.
type DetectorService struct {
	net                 gocv.Net
	netLoaded           bool
	modelPath           string
	configPath          string
	confidenceThreshold float64
	logger              *logger.Logger
}

// NewDetectorService creates a detector for the given model files. A
// missing model is not fatal: the detector reports unavailable and
// Detect returns an error until the files are provided.
func NewDetectorService(modelPath, configPath string, confidenceThreshold float64, logger *logger.Logger) *DetectorService {
	service := &DetectorService{
		modelPath:           modelPath,
		configPath:          configPath,
		confidenceThreshold: confidenceThreshold,
		logger:              logger,
	}

	if err := service.initializeNet(); err != nil {
		service.logger.Warning("Could not initialize detection network: %v", err)
		return service
	}

	return service
}

// initializeNet loads the detection network from the model and config files.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}

	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", s.configPath)
	}

	net := gocv.ReadNet(s.modelPath, s.configPath)

	if net.Empty() {
		return fmt.Errorf("failed to load network")
	}
	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)

	if errBackend != nil || errTarget != nil {
		return fmt.Errorf("failed to set preferable backend or target")
	}

	s.net = net
	s.netLoaded = true
	s.logger.Info("Detection network initialized successfully")
	return nil
}

// Available reports whether the detection network is loaded.
func (s *DetectorService) Available() bool {
	return s.netLoaded && !s.net.Empty()
}

// Close releases the network.
func (s *DetectorService) Close() {
	if s.netLoaded {
		s.net.Close()
		s.netLoaded = false
	}
}

// Detect runs the network over an encoded frame and returns the raw
// observations above the confidence threshold, in pixel units of the
// source frame, together with the frame dimensions.
func (s *DetectorService) Detect(imageBytes []byte) ([]models.RawDetection, models.FrameSize, error) {
	if !s.Available() {
		return nil, models.FrameSize{}, fmt.Errorf("detection network not initialized")
	}

	mat, err := gocv.IMDecode(imageBytes, gocv.IMReadColor)
	if err != nil {
		return nil, models.FrameSize{}, fmt.Errorf("failed to decode image: %v", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, models.FrameSize{}, fmt.Errorf("decoded image is empty")
	}

	frame := models.FrameSize{Width: mat.Cols(), Height: mat.Rows()}

	blob := gocv.BlobFromImage(mat, 1.0/127.5, image.Pt(300, 300), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")

	output := s.net.Forward("")
	defer output.Close()

	var results []models.RawDetection

	outputReshaped := output.Reshape(1, output.Total()/7)
	for i := 0; i < outputReshaped.Rows(); i++ {
		confidence := outputReshaped.GetFloatAt(i, 2)
		if float64(confidence) > s.confidenceThreshold {
			classID := int(outputReshaped.GetFloatAt(i, 1))
			x := float64(outputReshaped.GetFloatAt(i, 3)) * float64(frame.Width)
			y := float64(outputReshaped.GetFloatAt(i, 4)) * float64(frame.Height)
			width := float64(outputReshaped.GetFloatAt(i, 5))*float64(frame.Width) - x
			height := float64(outputReshaped.GetFloatAt(i, 6))*float64(frame.Height) - y

			results = append(results, models.RawDetection{
				ClassName:  getClassLabel(classID),
				Confidence: float64(confidence),
				X:          x,
				Y:          y,
				W:          width,
				H:          height,
			})
		}
	}

	return results, frame, nil
}

// DrawDetections renders zone rectangles and detection boxes onto the
// frame and returns the annotated JPEG, for snapshot storage.
func (s *DetectorService) DrawDetections(imageBytes []byte, detections []models.RawDetection, zoneSet []models.Zone) ([]byte, error) {
	blue := color.RGBA{R: 0, G: 0, B: 255, A: 0}
	green := color.RGBA{R: 0, G: 255, B: 0, A: 0}

	mat, err := gocv.IMDecode(imageBytes, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}
	defer mat.Close()

	for _, zone := range zoneSet {
		rect := image.Rect(int(zone.X), int(zone.Y), int(zone.X+zone.W), int(zone.Y+zone.H))
		if err := gocv.Rectangle(&mat, rect, blue, 2); err != nil {
			return nil, fmt.Errorf("failed to draw zone: %v", err)
		}
		pt := image.Pt(int(zone.X), int(zone.Y)-10)
		if err := gocv.PutText(&mat, "Zone: "+zone.Name, pt, gocv.FontHersheySimplex, 0.6, blue, 2); err != nil {
			return nil, fmt.Errorf("failed to draw zone label: %v", err)
		}
	}

	for _, det := range detections {
		rect := image.Rect(int(det.X), int(det.Y), int(det.X+det.W), int(det.Y+det.H))
		if err := gocv.Rectangle(&mat, rect, green, 2); err != nil {
			return nil, fmt.Errorf("failed to draw rectangle: %v", err)
		}

		label := fmt.Sprintf("%s (%.2f)", det.ClassName, det.Confidence)
		pt := image.Pt(int(det.X), int(det.Y)-5)
		if err := gocv.PutText(&mat, label, pt, gocv.FontHersheySimplex, 0.5, green, 1); err != nil {
			return nil, fmt.Errorf("failed to draw text: %v", err)
		}
	}

	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		s.logger.Error("Failed to encode image: %v", err)
		return nil, err
	}
	defer buf.Close()
	finalImage := make([]byte, len(buf.GetBytes()))
	copy(finalImage, buf.GetBytes())

	return finalImage, nil
}

func getClassLabel(classID int) string {
	labels := map[int]string{
		1:  "person",
		2:  "bicycle",
		3:  "car",
		4:  "motorcycle",
		5:  "airplane",
		6:  "bus",
		8:  "truck",
		16: "bird",
		17: "cat",
		18: "dog",
		27: "backpack",
		31: "handbag",
		44: "bottle",
		47: "cup",
		73: "laptop",
		74: "mouse",
		76: "keyboard",
		77: "cell phone",
		84: "book",
	}

	if label, exists := labels[classID]; exists {
		return label
	}
	return fmt.Sprintf("unknown_%d", classID)
}
