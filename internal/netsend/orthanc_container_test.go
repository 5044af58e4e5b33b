package netsend_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// orthancContainer wraps a running Orthanc PACS container, configured to
// accept any C-ECHO/C-STORE without authentication so the send engine can
// be exercised against a real, if minimal, DICOM peer rather than only the
// in-process mock SCP used by send_test.go.
type orthancContainer struct {
	container testcontainers.Container
	dicomHost string
	dicomPort string
	httpHost  string
	httpPort  string
}

func startOrthanc(ctx context.Context) (*orthancContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "orthancteam/orthanc:latest",
		ExposedPorts: []string{"4242/tcp", "8042/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("8042/tcp"),
			wait.ForHTTP("/system").WithPort("8042/tcp").WithStartupTimeout(60*time.Second),
		),
		Env: map[string]string{
			"ORTHANC__DICOM_AET":                  "ORTHANC",
			"ORTHANC__DICOM_CHECK_CALLED_AET":     "false",
			"ORTHANC__AUTHENTICATION_ENABLED":     "false",
			"ORTHANC__DICOM_ALWAYS_ALLOW_ECHO":    "true",
			"ORTHANC__DICOM_ALWAYS_ALLOW_STORE":   "true",
			"ORTHANC__UNKNOWN_SOP_CLASS_ACCEPTED": "true",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start Orthanc container: %w", err)
	}

	dicomHost, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("get DICOM host: %w", err)
	}
	dicomPort, err := container.MappedPort(ctx, "4242")
	if err != nil {
		return nil, fmt.Errorf("get DICOM port: %w", err)
	}
	httpPort, err := container.MappedPort(ctx, "8042")
	if err != nil {
		return nil, fmt.Errorf("get HTTP port: %w", err)
	}

	return &orthancContainer{
		container: container,
		dicomHost: dicomHost,
		dicomPort: dicomPort.Port(),
		httpHost:  dicomHost,
		httpPort:  httpPort.Port(),
	}, nil
}

func (oc *orthancContainer) stop(ctx context.Context) error {
	if oc.container == nil {
		return nil
	}
	return oc.container.Terminate(ctx)
}

func (oc *orthancContainer) httpBaseURL() string {
	return fmt.Sprintf("http://%s:%s", oc.httpHost, oc.httpPort)
}

// instances lists every instance ID Orthanc currently holds, via its REST
// API — the independent channel used to confirm a C-STORE over DIMSE
// actually landed, rather than trusting the SCU side's own report.
func (oc *orthancContainer) instances(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, oc.httpBaseURL()+"/instances", http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var ids []string
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("decode instance list: %w", err)
	}
	return ids, nil
}
