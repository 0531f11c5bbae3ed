package adapters

import (
	"archive/tar"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"

	"noetic-jammy/internal/ports"
	"noetic-jammy/internal/types"
)

// maxControlSize caps the control member read into memory.
const maxControlSize = 64 << 20

// DebReaderAdapter reads the control stanza of a .deb without dpkg.
type DebReaderAdapter struct{}

func NewDebReaderAdapter() DebReaderAdapter {
	return DebReaderAdapter{}
}

func (a DebReaderAdapter) ReadControl(path string) (types.ControlInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.ControlInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open artifact").
			WithCause(err)
	}
	defer f.Close()

	control, err := extractControl(f)
	if err != nil {
		return types.ControlInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read control data of " + filepath.Base(path)).
			WithCause(err)
	}
	return ParseControl(control), nil
}

// extractControl walks the ar members of a .deb until it finds
// control.tar, decompresses it according to its suffix and returns the
// control file.
func extractControl(r io.Reader) (string, error) {
	arR := ar.NewReader(r)
	for {
		header, err := arR.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		name := strings.TrimSuffix(strings.TrimSpace(header.Name), "/")
		if !strings.HasPrefix(name, "control.tar") {
			continue
		}
		if header.Size < 0 || header.Size > maxControlSize {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("%s has implausible size %d", name, header.Size))
		}
		data := make([]byte, header.Size)
		if _, err := io.ReadFull(arR, data); err != nil {
			return "", err
		}
		tarStream, closeFn, err := decompressMember(name, bytes.NewReader(data))
		if err != nil {
			return "", err
		}
		defer closeFn()

		tr := tar.NewReader(tarStream)
		for {
			th, err := tr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", err
			}
			if filepath.Base(th.Name) == "control" && th.Typeflag == tar.TypeReg {
				var buf bytes.Buffer
				if _, err := io.Copy(&buf, tr); err != nil {
					return "", err
				}
				return buf.String(), nil
			}
		}
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("control file missing from " + name)
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("control archive not found")
}

func decompressMember(name string, r io.Reader) (io.Reader, func(), error) {
	noop := func() {}
	switch {
	case strings.HasSuffix(name, ".gz"):
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return nil, noop, err
		}
		return gz, func() { gz.Close() }, nil
	case strings.HasSuffix(name, ".xz"):
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, noop, err
		}
		return xzr, noop, nil
	case strings.HasSuffix(name, ".zst"):
		zst, err := zstd.NewReader(r)
		if err != nil {
			return nil, noop, err
		}
		return zst, zst.Close, nil
	case name == "control.tar":
		return r, noop, nil
	default:
		return nil, noop, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported control archive " + name)
	}
}

// ParseControl reads a deb822 control stanza. Continuation lines are
// folded into the preceding field.
func ParseControl(control string) types.ControlInfo {
	fields := map[string]string{}
	var order []string
	var current string
	scanner := bufio.NewScanner(strings.NewReader(control))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if len(fields) > 0 {
				break
			}
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && current != "" {
			fields[current] += "\n" + strings.TrimSpace(line)
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		current = strings.TrimSpace(key)
		if _, seen := fields[current]; !seen {
			order = append(order, current)
		}
		fields[current] = strings.TrimSpace(value)
	}

	info := types.ControlInfo{Extra: map[string]string{}}
	for _, key := range order {
		value := fields[key]
		switch strings.ToLower(key) {
		case "package":
			info.Package = value
		case "version":
			info.Version = value
		case "architecture":
			info.Architecture = value
		case "maintainer":
			info.Maintainer = value
		case "depends":
			info.Depends = splitDepends(value)
		case "description":
			info.Description = value
		default:
			info.Extra[key] = value
		}
	}
	return info
}

func splitDepends(value string) []string {
	var depends []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.Join(strings.Fields(part), " "); part != "" {
			depends = append(depends, part)
		}
	}
	return depends
}

var _ ports.DebReaderPort = DebReaderAdapter{}
