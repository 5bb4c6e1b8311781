package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"examportal_backend/internals/features/exams/masters/model"
)

// ScopeResolver mengubah kode/ID dari request jadi entity master.
// Semua error scope dikembalikan sebagai *fiber.Error (4xx/500).
type ScopeResolver struct {
	DB *gorm.DB
}

func NewScopeResolver(db *gorm.DB) *ScopeResolver { return &ScopeResolver{DB: db} }

func (r *ScopeResolver) InstitutionByCode(ctx context.Context, code string) (*model.InstitutionModel, error) {
	var m model.InstitutionModel
	err := r.DB.WithContext(ctx).
		Where("LOWER(institution_code) = LOWER(?)", strings.TrimSpace(code)).
		Take(&m).Error
	if err != nil {
		return nil, notFoundOr500(err, fmt.Sprintf("Institution %q not found", code), "Failed to load institution")
	}
	return &m, nil
}

func (r *ScopeResolver) SessionByCode(ctx context.Context, institutionID uuid.UUID, code string) (*model.ExaminationSessionModel, error) {
	var m model.ExaminationSessionModel
	err := r.DB.WithContext(ctx).
		Where("examination_session_institution_id = ? AND LOWER(examination_session_code) = LOWER(?)",
			institutionID, strings.TrimSpace(code)).
		Take(&m).Error
	if err != nil {
		return nil, notFoundOr500(err, fmt.Sprintf("Examination session %q not found", code), "Failed to load examination session")
	}
	return &m, nil
}

func (r *ScopeResolver) CourseByCode(ctx context.Context, institutionID uuid.UUID, code string) (*model.CourseModel, error) {
	var m model.CourseModel
	err := r.DB.WithContext(ctx).
		Where("course_institution_id = ? AND LOWER(course_code) = LOWER(?)", institutionID, strings.TrimSpace(code)).
		Take(&m).Error
	if err != nil {
		return nil, notFoundOr500(err, fmt.Sprintf("Course %q not found", code), "Failed to load course")
	}
	return &m, nil
}

// CoursesForGeneration: course tertentu bila courseCode diisi,
// selain itu semua course institution yang dibuka (offering) pada session tsb.
func (r *ScopeResolver) CoursesForGeneration(ctx context.Context, institutionID, sessionID uuid.UUID, courseCode string) ([]model.CourseModel, error) {
	if strings.TrimSpace(courseCode) != "" {
		c, err := r.CourseByCode(ctx, institutionID, courseCode)
		if err != nil {
			return nil, err
		}
		return []model.CourseModel{*c}, nil
	}

	var rows []model.CourseModel
	err := r.DB.WithContext(ctx).
		Where("course_institution_id = ?", institutionID).
		Where("course_id IN (?)", r.DB.Model(&model.CourseOfferingModel{}).
			Select("course_offering_course_id").
			Where("course_offering_session_id = ?", sessionID)).
		Order("course_code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load courses")
	}
	if len(rows) == 0 {
		return nil, fiber.NewError(fiber.StatusNotFound, "No courses found for this institution and session")
	}
	return rows, nil
}

// UploadScope: scope lengkap untuk satu bulk upload nilai.
type UploadScope struct {
	Institution model.InstitutionModel
	Session     model.ExaminationSessionModel
	Program     model.ProgramModel
	Course      model.CourseModel
}

func (r *ScopeResolver) ResolveUploadScope(ctx context.Context, institutionID, sessionID, programID, courseID uuid.UUID) (*UploadScope, error) {
	db := r.DB.WithContext(ctx)
	var s UploadScope

	if err := db.Where("institution_id = ?", institutionID).Take(&s.Institution).Error; err != nil {
		return nil, notFoundOr500(err, "Institution not found", "Failed to load institution")
	}
	if err := db.Where("examination_session_id = ? AND examination_session_institution_id = ?", sessionID, institutionID).
		Take(&s.Session).Error; err != nil {
		return nil, notFoundOr500(err, "Examination session not found for this institution", "Failed to load examination session")
	}
	if err := db.Where("program_id = ? AND program_institution_id = ?", programID, institutionID).
		Take(&s.Program).Error; err != nil {
		return nil, notFoundOr500(err, "Program not found for this institution", "Failed to load program")
	}
	if err := db.Where("course_id = ? AND course_institution_id = ?", courseID, institutionID).
		Take(&s.Course).Error; err != nil {
		return nil, notFoundOr500(err, "Course not found for this institution", "Failed to load course")
	}
	return &s, nil
}

func notFoundOr500(err error, notFound, failed string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, notFound)
	}
	return fiber.NewError(fiber.StatusInternalServerError, failed)
}
