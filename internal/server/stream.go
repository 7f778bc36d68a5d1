package server

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"detectdemo/internal/session"
	"detectdemo/pkg/log"
)

const streamInterval = 100 * time.Millisecond

var (
	blankOnce  sync.Once
	blankFrame []byte
)

// blankJPEG is sent until the first frame is rendered.
func blankJPEG() []byte {
	blankOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, 640, 640))
		gray := color.RGBA{R: 64, G: 64, B: 64, A: 255}
		for y := range 640 {
			for x := range 640 {
				img.Set(x, y, gray)
			}
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 75}); err == nil {
			blankFrame = buf.Bytes()
		}
	})
	return blankFrame
}

func writeFrame(w http.ResponseWriter, data []byte) error {
	if _, err := w.Write([]byte("--frame\r\nContent-Type: image/jpeg\r\n\r\n")); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := w.Write([]byte("\r\n"))
	return err
}

// handleStreamSession streams the overlay frames as MJPEG
// @Summary Live overlay stream
// @Description multipart/x-mixed-replace stream of the rendered frames, ends with the frame loop.
// @Tags session
// @Produce multipart/x-mixed-replace
// @Param session_id path string true "session id"
// @Success 200 {file} binary "MJPEG stream"
// @Failure 404 {object} ErrorResponse "session not found"
// @Router /api/v1/sessions/{session_id}/stream [get]
func (s *Server) handleStreamSession(c *gin.Context) {
	sess := c.MustGet(sessionKey).(*session.Session)
	logger := log.GetLogger(c)

	w := c.Writer
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var last []byte
	for {
		data := sess.Overlay()
		if data == nil {
			data = blankJPEG()
		}
		// skip unchanged frames, the slice is replaced on every new frame
		if last == nil || !sameSlice(last, data) {
			if err := writeFrame(w, data); err != nil {
				logger.Debugf("stream client gone: %v", err)
				return
			}
			w.Flush()
			last = data
		}

		select {
		case <-c.Request.Context().Done():
			return
		case <-sess.Done():
			if final := sess.Overlay(); final != nil && !sameSlice(last, final) {
				_ = writeFrame(w, final)
				w.Flush()
			}
			return
		case <-ticker.C:
		}
	}
}

func sameSlice(a, b []byte) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}
