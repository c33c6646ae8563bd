package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *BuildError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryTemplate, SeverityFatal, "failed to load header"),
			expected: "template (fatal): failed to load header: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, test.err.Error())
		})
	}
}

func TestBuildError_WithContext(t *testing.T) {
	err := FilesystemError("mkdir", "/tmp/out", fs.ErrPermission)

	require.Equal(t, "mkdir", err.Context["operation"])
	require.Equal(t, "/tmp/out", err.Context["path"])
	require.ErrorIs(t, err, fs.ErrPermission)
}

func TestIsCategory_FollowsWrapChain(t *testing.T) {
	inner := OutputExists("./build")
	wrapped := fmt.Errorf("run build: %w", inner)

	require.True(t, IsCategory(wrapped, CategoryValidation))
	require.False(t, IsCategory(wrapped, CategoryFileSystem))
	require.False(t, IsCategory(stdErrors.New("plain"), CategoryValidation))
	require.Equal(t, CategoryInternal, GetCategory(stdErrors.New("plain")))
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, 0},
		{"plain", stdErrors.New("boom"), 1},
		{"invalid argument", InvalidArgument("deploy"), 1},
		{"output exists", OutputExists("build"), 1},
		{"config", ConfigInvalid("paths.source", "empty"), 7},
		{"template", TemplateMissing("_template/html/header.p.html", fs.ErrNotExist), 11},
		{"filesystem", FilesystemError("read", "src", fs.ErrNotExist), 11},
		{"internal", InternalError("oops", nil), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.code, a.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	a := NewCLIErrorAdapter(false, logger)

	var out bytes.Buffer
	code := a.Report(&out, InvalidArgument(""))
	require.Equal(t, 1, code)
	require.Equal(t, "Invalid argument.\n", out.String())
	require.Empty(t, logs.String())

	out.Reset()
	code = a.Report(&out, InternalError("unexpected state", stdErrors.New("nil template")))
	require.Equal(t, 10, code)
	require.Contains(t, out.String(), "internal: unexpected state: nil template")
	require.Contains(t, logs.String(), "unexpected state")
}
