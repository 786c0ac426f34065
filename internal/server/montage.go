package server

import (
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/matzehuels/gangsheet/pkg/buildinfo"
	"github.com/matzehuels/gangsheet/pkg/errors"
	"github.com/matzehuels/gangsheet/pkg/pipeline"
	"github.com/matzehuels/gangsheet/pkg/sink"
	"github.com/matzehuels/gangsheet/pkg/storage"
)

// =============================================================================
// Health and catalog
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Options.Catalog().Entries())
}

// =============================================================================
// Montage
// =============================================================================

func (s *Server) handleMontage(w http.ResponseWriter, r *http.Request) {
	opts, publish, err := s.runOptions(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	inputs, err := s.readDesigns(w, r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	s.runAndSend(w, r, inputs, opts, publish)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	opts, _, err := s.runOptions(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	inputs, err := s.readDesigns(w, r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	img, res, err := s.cfg.Runner.Preview(r.Context(), inputs, opts)
	if err != nil {
		s.fail(w, r, err, res)
		return
	}
	data, err := sink.EncodePNG(img)
	if err != nil {
		s.fail(w, r, err, res)
		return
	}

	w.Header().Set(headerRunID, res.RunID)
	w.Header().Set(headerSkipped, strconv.Itoa(len(res.Skipped)))
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// runOptions derives per-request options from the query string:
// preview=false skips the preview page, publish=true uploads the archive.
func (s *Server) runOptions(r *http.Request) (pipeline.Options, bool, error) {
	opts := s.cfg.Options
	opts.Logger = s.logger(r)

	q := r.URL.Query()
	if v := q.Get("preview"); v != "" {
		want, err := strconv.ParseBool(v)
		if err != nil {
			return opts, false, errors.New(errors.ErrCodeInvalidInput, "preview: %q is not a boolean", v)
		}
		opts.SkipPreview = !want
	}

	publish := false
	if v := q.Get("publish"); v != "" {
		var err error
		if publish, err = strconv.ParseBool(v); err != nil {
			return opts, false, errors.New(errors.ErrCodeInvalidInput, "publish: %q is not a boolean", v)
		}
	}
	if publish && s.cfg.Publisher == nil {
		return opts, false, errors.New(errors.ErrCodeUnsupported, "publishing is not configured on this server")
	}
	return opts, publish, nil
}

// runAndSend builds the montage into a temporary archive and answers with it,
// or with its published location.
func (s *Server) runAndSend(w http.ResponseWriter, r *http.Request, inputs []pipeline.Input, opts pipeline.Options, publish bool) *pipeline.Result {
	res, archive, err := s.build(r, inputs, opts)
	if err != nil {
		s.fail(w, r, err, res)
		return nil
	}
	defer func() {
		archive.Close()
		os.Remove(archive.Name())
	}()

	if publish {
		obj, err := s.publish(r, res, archive)
		if err != nil {
			s.fail(w, r, err, res)
			return nil
		}
		writeJSON(w, http.StatusCreated, published{
			RunID:   res.RunID,
			Object:  obj,
			Summary: res.Summary,
			Skipped: skippedOf(res.Skipped),
		})
		return res
	}

	runHeaders(w, res)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archiveName(res.RunID)))
	if _, err := archive.Seek(0, io.SeekStart); err != nil {
		s.fail(w, r, err, res)
		return nil
	}
	if info, err := archive.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, archive); err != nil {
		s.logger(r).Warn("archive stream interrupted", "run", res.RunID, "error", err)
	}
	return res
}

// build runs the pipeline into a temporary zip file. The archive is only
// returned for a non-empty run; an empty run yields EMPTY_RESULT.
func (s *Server) build(r *http.Request, inputs []pipeline.Input, opts pipeline.Options) (*pipeline.Result, *os.File, error) {
	f, err := os.CreateTemp("", "gangsheet-*.zip")
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "create archive")
	}
	discard := func() {
		f.Close()
		os.Remove(f.Name())
	}

	z := sink.NewZip(f)
	res, err := s.cfg.Runner.Execute(r.Context(), inputs, z, opts)
	if cerr := z.Close(); err == nil && cerr != nil {
		err = errors.Wrap(errors.ErrCodeInternal, cerr, "finish archive")
	}
	if err != nil {
		discard()
		return res, nil, err
	}
	if res.Empty() {
		discard()
		return res, nil, errors.New(errors.ErrCodeEmptyResult, "no printable designs (%d skipped)", len(res.Skipped))
	}
	return res, f, nil
}

type published struct {
	RunID   string           `json:"run_id"`
	Object  *storage.Object  `json:"object"`
	Summary pipeline.Summary `json:"summary"`
	Skipped []skipped        `json:"skipped,omitempty"`
}

func (s *Server) publish(r *http.Request, res *pipeline.Result, archive *os.File) (*storage.Object, error) {
	info, err := archive.Stat()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "stat archive")
	}
	if _, err := archive.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rewind archive")
	}
	obj, err := s.cfg.Publisher.Publish(r.Context(), archiveName(res.RunID), archive, info.Size())
	if err != nil {
		return nil, err
	}
	s.logger(r).Info("published montage", "run", res.RunID, "key", obj.Key, "bytes", obj.Size)
	return obj, nil
}

func archiveName(runID string) string {
	return "montage-" + runID + ".zip"
}

// =============================================================================
// Uploads
// =============================================================================

// readDesigns parses a multipart upload into run inputs. Each file part is
// read lazily by the pipeline, so an unreadable part is skipped like any
// other bad design. Malformed forms fail the whole request.
func (s *Server) readDesigns(w http.ResponseWriter, r *http.Request) ([]pipeline.Input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooBig *http.MaxBytesError
		if stderrors.As(err, &tooBig) {
			return nil, errors.New(errors.ErrCodeAssetTooLarge, "upload exceeds %d bytes", tooBig.Limit)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse upload")
	}

	form := r.MultipartForm
	files := field(form.File, "files")
	if len(files) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no files uploaded")
	}
	labels := field(form.Value, "category")
	copies := field(form.Value, "copies")

	inputs := make([]pipeline.Input, 0, len(files))
	for i, fh := range files {
		in := pipeline.Input{Name: uploadName(fh.Filename, i), Copies: 1}
		if i < len(labels) {
			in.Label = labels[i]
		}
		if i < len(copies) {
			n, err := strconv.Atoi(strings.TrimSpace(copies[i]))
			if err != nil {
				return nil, errors.New(errors.ErrCodeInvalidInput, "copies[%d]: %q is not a number", i, copies[i])
			}
			in.Copies = n
		}
		in.Open = func() ([]byte, error) { return readPart(fh) }
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// field returns form values under name, falling back to the bracketed
// array form some clients send.
func field[T any](m map[string][]T, name string) []T {
	if v := m[name]; len(v) > 0 {
		return v
	}
	return m[name+"[]"]
}

// uploadName reduces a client file name to a safe basename.
func uploadName(filename string, i int) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if errors.ValidateAssetName(name) != nil {
		return fmt.Sprintf("design-%d", i+1)
	}
	return name
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "open upload %s", fh.Filename)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "read upload %s", fh.Filename)
	}
	return data, nil
}
