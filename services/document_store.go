package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"deal-pipeline-api/models"
	"deal-pipeline-api/utils"
	"deal-pipeline-api/workflow"

	"github.com/gabriel-vasile/mimetype"
)

// FileDocumentStore serves deal packages from <root>/deals/<id>/package.*.
// Deals without an uploaded package get a generated plain-text summary.
type FileDocumentStore struct {
	root string
}

func NewFileDocumentStore(root string) *FileDocumentStore {
	return &FileDocumentStore{root: root}
}

func (s *FileDocumentStore) Package(ctx context.Context, deal *models.Deal) (*Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.root, "deals", strconv.Itoa(deal.DealID))
	matches, err := filepath.Glob(filepath.Join(dir, "package.*"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return summaryPackage(deal), nil
	}
	sort.Strings(matches)

	data, err := os.ReadFile(matches[0])
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return summaryPackage(deal), nil
		}
		return nil, fmt.Errorf("read package: %w", err)
	}

	mt := mimetype.Detect(data)
	return &Package{
		FileName:    fmt.Sprintf("%s-package%s", deal.QualificationCode, mt.Extension()),
		ContentType: mt.String(),
		Data:        data,
	}, nil
}

func summaryPackage(deal *models.Deal) *Package {
	var b strings.Builder
	fmt.Fprintf(&b, "Deal %s\n", deal.QualificationCode)
	fmt.Fprintf(&b, "Stage: %s\n", workflow.Label(workflow.Stage(deal.Stage)))
	if deal.AmountRequested != "" {
		fmt.Fprintf(&b, "Amount requested: %s\n", utils.FormatAmountText(deal.AmountRequested))
	}
	if v := deal.AssetClassList(); len(v) > 0 {
		fmt.Fprintf(&b, "Asset classes: %s\n", strings.Join(v, ", "))
	}
	if v := deal.GeographyList(); len(v) > 0 {
		fmt.Fprintf(&b, "Geographies: %s\n", strings.Join(v, ", "))
	}
	if deal.OverallScore != nil {
		fmt.Fprintf(&b, "Score: %.1f\n", *deal.OverallScore)
	}
	if deal.ReleaseStatus == string(workflow.DealReleased) {
		if released := utils.FormatDatePtr(deal.ReleaseAuthorizedAt); released != "" {
			fmt.Fprintf(&b, "Released to partners: %s\n", released)
		}
	}
	if !deal.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "Last updated: %s\n", utils.FormatDate(deal.UpdatedAt))
	}

	data := []byte(b.String())
	return &Package{
		FileName:    deal.QualificationCode + "-summary.txt",
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}
}
