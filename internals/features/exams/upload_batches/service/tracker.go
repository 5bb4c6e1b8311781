package service

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/speps/go-hashids"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/blake2b"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"examportal_backend/internals/features/exams/upload_batches/dto"
	"examportal_backend/internals/features/exams/upload_batches/model"
	helper "examportal_backend/internals/helpers"
	"examportal_backend/internals/helpers/dbtime"
)

var (
	ErrDuplicateUpload = fiber.NewError(fiber.StatusConflict, "This file has already been uploaded")
	ErrBatchFinalized  = errors.New("upload batch already finalized")
)

// FileFingerprint: BLAKE2b-256 (hex) dari array rows yang sudah dipadatkan.
// Whitespace/format JSON asal tidak mempengaruhi hash.
func FileFingerprint(rowsJSON string) string {
	compact := gjson.Get(rowsJSON, "@ugly").Raw
	if compact == "" {
		compact = rowsJSON
	}
	sum := blake2b.Sum256([]byte(compact))
	return hex.EncodeToString(sum[:])
}

// BuildErrorSummary: frekuensi tiap pesan, count desc lalu pesan asc.
func BuildErrorSummary(messages []string) []dto.ErrorSummaryItem {
	counts := map[string]int{}
	for _, m := range messages {
		counts[m]++
	}
	out := make([]dto.ErrorSummaryItem, 0, len(counts))
	for m, n := range counts {
		out = append(out, dto.ErrorSummaryItem{Message: m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Message < out[j].Message
	})
	return out
}

type Scope struct {
	InstitutionID uuid.UUID
	SessionID     uuid.UUID
	ProgramID     uuid.UUID
	CourseID      uuid.UUID
}

type BeginInput struct {
	Scope      Scope
	FileName   string
	FileSize   int64
	FileType   string
	FileHash   string
	Total      int
	UploadedBy *string
}

type FinalizeInput struct {
	Status            model.BatchStatus
	Total             int
	Successful        int
	Failed            int
	Skipped           int
	Errors            any
	ValidationErrors  any
	SkippedDetails    any
	ErrorSummary      []dto.ErrorSummaryItem
	ProcessingSummary string
}

/* =========================================================
   TRACKER
========================================================= */

type Tracker struct {
	DB    *gorm.DB
	Salt  string
	Clock dbtime.Clock
}

func NewTracker(db *gorm.DB, salt string) *Tracker {
	return &Tracker{DB: db, Salt: salt}
}

// BatchCode: "MUB-<yyyymmdd>-<hashid>", hashid dari 8 byte pertama uuid.
func (t *Tracker) BatchCode(id uuid.UUID, at time.Time) (string, error) {
	hd := hashids.NewData()
	hd.Salt = t.Salt
	hd.MinLength = 6
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return "", pkgerrors.Wrap(err, "init hashids")
	}
	enc, err := h.EncodeInt64([]int64{
		int64(binary.BigEndian.Uint32(id[0:4])),
		int64(binary.BigEndian.Uint32(id[4:8])),
	})
	if err != nil {
		return "", pkgerrors.Wrap(err, "encode batch code")
	}
	return fmt.Sprintf("MUB-%s-%s", at.UTC().Format("20060102"), enc), nil
}

// EnsureNotDuplicate menolak hash yang sama pada scope yang sama kecuali batch sebelumnya Failed.
func (t *Tracker) EnsureNotDuplicate(ctx context.Context, scope Scope, hash string) error {
	var n int64
	err := t.DB.WithContext(ctx).Model(&model.MarkUploadBatchModel{}).
		Where(`mark_upload_batch_institution_id = ?
			AND mark_upload_batch_session_id = ?
			AND mark_upload_batch_program_id = ?
			AND mark_upload_batch_course_id = ?
			AND mark_upload_batch_file_hash = ?
			AND mark_upload_batch_status <> ?`,
			scope.InstitutionID, scope.SessionID, scope.ProgramID, scope.CourseID, hash, model.BatchStatusFailed).
		Count(&n).Error
	if err != nil {
		return pkgerrors.Wrap(err, "check duplicate upload")
	}
	if n > 0 {
		return ErrDuplicateUpload
	}
	return nil
}

// Begin: insert Pending lalu pindah ke Processing.
// Hash yang sama pada scope yang sama (batch belum Failed) → ErrDuplicateUpload.
func (t *Tracker) Begin(ctx context.Context, in BeginInput) (*model.MarkUploadBatchModel, error) {
	now := t.Clock.Now()
	m := &model.MarkUploadBatchModel{
		MarkUploadBatchID:            uuid.New(),
		MarkUploadBatchInstitutionID: in.Scope.InstitutionID,
		MarkUploadBatchSessionID:     in.Scope.SessionID,
		MarkUploadBatchProgramID:     in.Scope.ProgramID,
		MarkUploadBatchCourseID:      in.Scope.CourseID,
		MarkUploadBatchFileName:      in.FileName,
		MarkUploadBatchFileSize:      in.FileSize,
		MarkUploadBatchFileType:      in.FileType,
		MarkUploadBatchFileHash:      in.FileHash,
		MarkUploadBatchTotal:         in.Total,
		MarkUploadBatchStatus:        model.BatchStatusPending,
		MarkUploadBatchUploadedBy:    in.UploadedBy,
	}
	code, err := t.BatchCode(m.MarkUploadBatchID, now)
	if err != nil {
		return nil, err
	}
	m.MarkUploadBatchCode = code

	if err := t.DB.WithContext(ctx).Create(m).Error; err != nil {
		// upload identik yang berjalan bersamaan ditahan oleh uq_mark_upload_batches_hash
		if helper.IsUniqueViolation(err) {
			return nil, ErrDuplicateUpload
		}
		return nil, pkgerrors.Wrap(err, "create upload batch")
	}
	if err := t.DB.WithContext(ctx).Model(&model.MarkUploadBatchModel{}).
		Where("mark_upload_batch_id = ? AND mark_upload_batch_status = ?", m.MarkUploadBatchID, model.BatchStatusPending).
		Updates(map[string]any{
			"mark_upload_batch_status":     model.BatchStatusProcessing,
			"mark_upload_batch_started_at": now,
		}).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "start upload batch")
	}
	m.MarkUploadBatchStatus = model.BatchStatusProcessing
	m.MarkUploadBatchStartedAt = &now
	return m, nil
}

// Finalize hanya mengubah batch yang masih Pending/Processing; sesudahnya immutable.
func (t *Tracker) Finalize(ctx context.Context, batchID uuid.UUID, in FinalizeInput) error {
	if !in.Status.IsFinal() {
		return pkgerrors.Errorf("finalize with non-final status %q", in.Status)
	}
	errs, err := toJSON(in.Errors)
	if err != nil {
		return err
	}
	verrs, err := toJSON(in.ValidationErrors)
	if err != nil {
		return err
	}
	skipped, err := toJSON(in.SkippedDetails)
	if err != nil {
		return err
	}
	summary, err := toJSON(in.ErrorSummary)
	if err != nil {
		return err
	}

	res := t.DB.WithContext(ctx).Model(&model.MarkUploadBatchModel{}).
		Where("mark_upload_batch_id = ? AND mark_upload_batch_status IN ?", batchID,
			[]model.BatchStatus{model.BatchStatusPending, model.BatchStatusProcessing}).
		Updates(map[string]any{
			"mark_upload_batch_status":             in.Status,
			"mark_upload_batch_total":              in.Total,
			"mark_upload_batch_successful":         in.Successful,
			"mark_upload_batch_failed":             in.Failed,
			"mark_upload_batch_skipped":            in.Skipped,
			"mark_upload_batch_error_details":      errs,
			"mark_upload_batch_validation_errors":  verrs,
			"mark_upload_batch_skipped_details":    skipped,
			"mark_upload_batch_error_summary":      summary,
			"mark_upload_batch_processing_summary": in.ProcessingSummary,
			"mark_upload_batch_finished_at":        t.Clock.Now(),
		})
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "finalize upload batch")
	}
	if res.RowsAffected == 0 {
		return ErrBatchFinalized
	}
	return nil
}

// MarkFailed: finalize sebagai Failed dengan satu alasan (mis. error infra sebelum baris diproses).
func (t *Tracker) MarkFailed(ctx context.Context, batchID uuid.UUID, total int, reason string) error {
	return t.Finalize(ctx, batchID, FinalizeInput{
		Status:            model.BatchStatusFailed,
		Total:             total,
		Failed:            total,
		Errors:            []string{reason},
		ErrorSummary:      BuildErrorSummary([]string{reason}),
		ProcessingSummary: reason,
	})
}

func (t *Tracker) Get(ctx context.Context, batchID uuid.UUID) (*model.MarkUploadBatchModel, error) {
	var m model.MarkUploadBatchModel
	if err := t.DB.WithContext(ctx).Where("mark_upload_batch_id = ?", batchID).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Upload batch not found")
		}
		return nil, pkgerrors.Wrap(err, "get upload batch")
	}
	return &m, nil
}

type ListFilter struct {
	InstitutionID uuid.UUID
	SessionID     *uuid.UUID
	ProgramID     *uuid.UUID
	CourseID      *uuid.UUID
	Status        string
}

func (t *Tracker) List(ctx context.Context, f ListFilter, offset, limit int) ([]model.MarkUploadBatchModel, int64, error) {
	q := t.DB.WithContext(ctx).Model(&model.MarkUploadBatchModel{}).
		Where("mark_upload_batch_institution_id = ?", f.InstitutionID)
	if f.SessionID != nil {
		q = q.Where("mark_upload_batch_session_id = ?", *f.SessionID)
	}
	if f.ProgramID != nil {
		q = q.Where("mark_upload_batch_program_id = ?", *f.ProgramID)
	}
	if f.CourseID != nil {
		q = q.Where("mark_upload_batch_course_id = ?", *f.CourseID)
	}
	if f.Status != "" {
		q = q.Where("mark_upload_batch_status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(err, "count upload batches")
	}
	var rows []model.MarkUploadBatchModel
	if err := q.Order("mark_upload_batch_created_at DESC").
		Order("mark_upload_batch_id ASC").
		Offset(offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(err, "list upload batches")
	}
	return rows, total, nil
}

func toJSON(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := sonic.Marshal(v)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "marshal audit payload")
	}
	return datatypes.JSON(b), nil
}
