package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
	"github.com/RostislavDaniliv/eddy-school/internal/repositories"
)

type DocumentHandler struct {
	docRepo repositories.DocumentRepo
}

func NewDocumentHandler(repo repositories.DocumentRepo) *DocumentHandler {
	return &DocumentHandler{docRepo: repo}
}

// Create godoc
// @Summary Register a knowledge document
// @Description Attaches a Google document id or an uploaded file path to a business unit
// @Tags Documents
// @Accept json
// @Produce json
// @Param request body models.Document true "Document"
// @Success 201 {object} models.Document
// @Router /api/1.0/document/create/ [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var doc models.Document
	if err := c.BodyParser(&doc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if doc.DocumentID == "" && doc.FilePath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "document_id or file is required",
		})
	}

	if err := h.docRepo.Create(&doc); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create document",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

// Update godoc
// @Summary Update a document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body models.Document true "Fields to update"
// @Success 200 {object} models.Document
// @Router /api/1.0/document/update/{id} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	doc, err := h.docRepo.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "document not found",
		})
	}

	var upd struct {
		Name       *string `json:"name"`
		DocumentID *string `json:"document_id"`
		FilePath   *string `json:"file"`
	}
	if err := c.BodyParser(&upd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if upd.Name != nil {
		doc.Name = *upd.Name
	}
	if upd.DocumentID != nil {
		doc.DocumentID = *upd.DocumentID
	}
	if upd.FilePath != nil {
		doc.FilePath = *upd.FilePath
	}

	if err := h.docRepo.Update(doc); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update document",
		})
	}

	return c.JSON(doc)
}

// Delete godoc
// @Summary Delete a document
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204
// @Router /api/1.0/document/update/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	if _, err := h.docRepo.GetByID(c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "document not found",
		})
	}

	if err := h.docRepo.Delete(c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete document",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
