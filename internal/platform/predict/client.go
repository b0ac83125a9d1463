// Package predict is a TCP client for the externally trained risk
// classifier. The classifier is advisory: callers treat any failure as
// "no verdict" and carry on.
package predict

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ems/ems/internal/domain/triage"
)

const (
	// VerdictStable and VerdictCritical are the two classifier outcomes.
	VerdictStable   = "Stable"
	VerdictCritical = "Critical"

	// FeatureCount is the number of values in a classifier request: the
	// seven raw vitals plus pulse pressure, MAP, BMI and HRV.
	FeatureCount = 11

	// maxResponseSize bounds the verdict read. Verdicts are a short line
	// of text.
	maxResponseSize = 1 << 10

	// defaultBMI and defaultHRV fill the two derived features the field
	// client never measures.
	defaultBMI = 22.0
	defaultHRV = 60.0
)

// Client speaks the classifier wire protocol: a 4-byte big-endian length
// prefix followed by the comma-joined feature vector, answered with a
// plain-text verdict line.
type Client struct {
	addr        string
	dialTimeout time.Duration
	readTimeout time.Duration
	log         zerolog.Logger
}

// NewClient creates a classifier client for the given address.
func NewClient(addr string, dialTimeout, readTimeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		addr:        addr,
		dialTimeout: dialTimeout,
		readTimeout: readTimeout,
		log:         log,
	}
}

// FeaturesFromVitals builds the classifier feature vector from a vitals
// snapshot. All seven raw fields must be numeric; pulse pressure and MAP
// are derived from the blood pressure, while BMI and HRV use nominal
// defaults.
func FeaturesFromVitals(v triage.Vitals) ([]float64, error) {
	raw := make([]float64, triage.FieldCount)
	for i := 0; i < triage.FieldCount; i++ {
		var field string
		if i < len(v) {
			field = strings.TrimSpace(v[i])
		}
		val, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("vitals field %d is not numeric: %q", i, field)
		}
		raw[i] = val
	}

	sys := raw[triage.FieldBPSys]
	dia := raw[triage.FieldBPDia]
	pulsePressure := sys - dia
	meanArterial := dia + pulsePressure/3

	features := make([]float64, 0, FeatureCount)
	features = append(features, raw...)
	features = append(features, pulsePressure, meanArterial, defaultBMI, defaultHRV)
	return features, nil
}

// Classify derives the feature vector from a vitals snapshot and asks the
// classifier for a verdict.
func (c *Client) Classify(ctx context.Context, v triage.Vitals) (string, error) {
	features, err := FeaturesFromVitals(v)
	if err != nil {
		return "", err
	}
	return c.Predict(ctx, features)
}

// Predict sends one feature vector and returns VerdictStable or
// VerdictCritical.
func (c *Client) Predict(ctx context.Context, features []float64) (string, error) {
	if len(features) != FeatureCount {
		return "", fmt.Errorf("predict: expected %d features, got %d", FeatureCount, len(features))
	}

	start := time.Now()

	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return "", fmt.Errorf("predict: dial %s: %w", c.addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(c.readTimeout))
	}

	payload := []byte(joinFeatures(features))
	frame := make([]byte, 4, 4+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	frame = append(frame, payload...)

	if _, err := conn.Write(frame); err != nil {
		return "", fmt.Errorf("predict: write: %w", err)
	}
	// Half-close so the server sees EOF on the request side; it answers
	// with the verdict and closes.
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.CloseWrite()
	}

	resp, err := io.ReadAll(io.LimitReader(conn, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("predict: read: %w", err)
	}

	verdict, err := parseVerdict(string(resp))
	if err != nil {
		return "", err
	}

	c.log.Debug().
		Str("addr", c.addr).
		Str("verdict", verdict).
		Dur("duration", time.Since(start)).
		Msg("classifier verdict received")

	return verdict, nil
}

// joinFeatures renders the vector in its comma-joined wire form.
func joinFeatures(features []float64) string {
	parts := make([]string, len(features))
	for i, f := range features {
		parts[i] = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// parseVerdict extracts the outcome from the verdict line. The classifier
// answers "Predicted Output: Stable" or "Predicted Output: Critical".
func parseVerdict(raw string) (string, error) {
	line := strings.TrimSpace(raw)
	switch {
	case strings.Contains(line, VerdictCritical):
		return VerdictCritical, nil
	case strings.Contains(line, VerdictStable):
		return VerdictStable, nil
	}
	return "", fmt.Errorf("predict: unrecognized verdict %q", line)
}
