package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"galeria/internal/checksum"
	"galeria/internal/domain"
	models "galeria/internal/domain/models/gallery"
	gallerySvc "galeria/internal/domain/services/gallery"
)

func TestRegisterAsset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.mustEvent(t, "Fin de Curso 2026")
	folder := env.mustFolder(t, event.ID, "Sexto A", nil)

	data := []byte("contenido de la foto")
	wantSum, err := checksum.Sum(data)
	if err != nil {
		t.Fatal(err)
	}

	asset, err := env.assets.RegisterAsset(ctx, &gallerySvc.RegisterAssetRequest{
		FolderID:     folder.ID,
		Filename:     "alumno-01.jpg",
		OriginalPath: "originals/alumno-01.jpg",
		Data:         data,
		MimeType:     "image/jpeg",
	})
	if err != nil {
		t.Fatalf("RegisterAsset error = %v", err)
	}

	if asset.Checksum != wantSum {
		t.Errorf("checksum = %q, want %q", asset.Checksum, wantSum)
	}
	if asset.Status != models.AssetStatusPending {
		t.Errorf("status = %q, want pending", asset.Status)
	}
	if asset.FileSize != int64(len(data)) {
		t.Errorf("file size = %d, want %d", asset.FileSize, len(data))
	}
	if got := env.reloadFolder(t, folder.ID).PhotoCount; got != 1 {
		t.Errorf("folder photo_count = %d, want 1", got)
	}
}

func TestRegisterAssetChecksumHandling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.mustEvent(t, "Fin de Curso 2026")
	folder := env.mustFolder(t, event.ID, "Sexto A", nil)

	data := []byte("bytes de otra foto")
	sum, err := checksum.Sum(data)
	if err != nil {
		t.Fatal(err)
	}

	newReq := func() *gallerySvc.RegisterAssetRequest {
		return &gallerySvc.RegisterAssetRequest{
			FolderID:     folder.ID,
			Filename:     "foto.jpg",
			OriginalPath: "originals/foto.jpg",
			MimeType:     "image/jpeg",
		}
	}

	t.Run("client checksum only", func(t *testing.T) {
		req := newReq()
		req.Filename = "cliente.jpg"
		req.Checksum = sum
		req.FileSize = int64(len(data))

		asset, err := env.assets.RegisterAsset(ctx, req)
		if err != nil {
			t.Fatalf("RegisterAsset error = %v", err)
		}
		if asset.Checksum != sum {
			t.Errorf("checksum = %q, want %q", asset.Checksum, sum)
		}
	})

	t.Run("uppercase client checksum is normalized", func(t *testing.T) {
		req := newReq()
		req.Filename = "mayusculas.jpg"
		req.Checksum = "ABC123" // malformed on top of uppercase

		_, err := env.assets.RegisterAsset(ctx, req)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("malformed checksum error = %v, want ErrValidation", err)
		}
	})

	t.Run("matching data and checksum", func(t *testing.T) {
		other := []byte("tercera foto")
		otherSum, _ := checksum.Sum(other)

		req := newReq()
		req.Filename = "ambos.jpg"
		req.Data = other
		req.Checksum = otherSum

		if _, err := env.assets.RegisterAsset(ctx, req); err != nil {
			t.Fatalf("RegisterAsset error = %v", err)
		}
	})

	t.Run("mismatched data and checksum", func(t *testing.T) {
		req := newReq()
		req.Filename = "distinto.jpg"
		req.Data = []byte("cuarta foto")
		req.Checksum = sum // digest of different content

		_, err := env.assets.RegisterAsset(ctx, req)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("mismatch error = %v, want ErrValidation", err)
		}
	})

	t.Run("neither data nor checksum", func(t *testing.T) {
		req := newReq()
		req.Filename = "vacio.jpg"

		_, err := env.assets.RegisterAsset(ctx, req)
		if !errors.Is(err, domain.ErrEmptyContent) {
			t.Errorf("empty error = %v, want ErrEmptyContent", err)
		}
	})
}

func TestRegisterAssetDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.mustEvent(t, "Fin de Curso 2026")
	folderA := env.mustFolder(t, event.ID, "Sexto A", nil)
	folderB := env.mustFolder(t, event.ID, "Sexto B", nil)

	data := []byte("misma foto dos veces")
	original := env.mustAsset(t, folderA.ID, "original.jpg", data)

	// Same content in another folder is still rejected: deduplication
	// is platform wide
	_, err := env.assets.RegisterAsset(ctx, &gallerySvc.RegisterAssetRequest{
		FolderID:     folderB.ID,
		Filename:     "copia.jpg",
		OriginalPath: "originals/copia.jpg",
		Data:         data,
		MimeType:     "image/jpeg",
	})

	var dup *domain.DuplicateChecksumError
	if !errors.As(err, &dup) {
		t.Fatalf("error = %v, want DuplicateChecksumError", err)
	}
	if dup.ExistingAssetID != original.ID {
		t.Errorf("ExistingAssetID = %q, want %q", dup.ExistingAssetID, original.ID)
	}
	if dup.FolderID != folderA.ID {
		t.Errorf("FolderID = %q, want %q", dup.FolderID, folderA.ID)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("DuplicateChecksumError should match ErrConflict, got %v", err)
	}

	// The rejected upload must not bump the target folder's counter
	if got := env.reloadFolder(t, folderB.ID).PhotoCount; got != 0 {
		t.Errorf("folder B photo_count = %d, want 0", got)
	}
}

func TestRegisterAssetConcurrentDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.mustEvent(t, "Fin de Curso 2026")
	folder := env.mustFolder(t, event.ID, "Sexto A", nil)

	// Same bytes raced from several uploaders: exactly one row may win,
	// every loser must learn which asset survived
	data := []byte("subida simultanea de la misma foto")
	const uploads = 8

	var wg sync.WaitGroup
	results := make(chan error, uploads)
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := env.assets.RegisterAsset(ctx, &gallerySvc.RegisterAssetRequest{
				FolderID:     folder.ID,
				Filename:     fmt.Sprintf("subida-%02d.jpg", n),
				OriginalPath: fmt.Sprintf("originals/subida-%02d.jpg", n),
				Data:         data,
				MimeType:     "image/jpeg",
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var wins, duplicates int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		var dup *domain.DuplicateChecksumError
		if !errors.As(err, &dup) {
			t.Fatalf("racing upload error = %v, want DuplicateChecksumError", err)
		}
		duplicates++
	}
	if wins != 1 || duplicates != uploads-1 {
		t.Errorf("wins = %d, duplicates = %d, want 1 and %d", wins, duplicates, uploads-1)
	}
	if got := env.reloadFolder(t, folder.ID).PhotoCount; got != 1 {
		t.Errorf("folder photo_count = %d, want 1", got)
	}
}

func TestRegisterAssetValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.mustEvent(t, "Fin de Curso 2026")
	folder := env.mustFolder(t, event.ID, "Sexto A", nil)

	base := func() *gallerySvc.RegisterAssetRequest {
		return &gallerySvc.RegisterAssetRequest{
			FolderID:     folder.ID,
			Filename:     "foto.jpg",
			OriginalPath: "originals/foto.jpg",
			Data:         []byte("una foto cualquiera"),
			MimeType:     "image/jpeg",
		}
	}

	t.Run("unsupported mime type", func(t *testing.T) {
		req := base()
		req.MimeType = "application/pdf"
		if _, err := env.assets.RegisterAsset(ctx, req); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("oversized file", func(t *testing.T) {
		req := base()
		req.FileSize = 200 << 20 // well past the jpeg cap
		if _, err := env.assets.RegisterAsset(ctx, req); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("missing folder", func(t *testing.T) {
		req := base()
		req.FolderID = "missing"
		if _, err := env.assets.RegisterAsset(ctx, req); !errors.Is(err, domain.ErrFolderNotFound) {
			t.Errorf("error = %v, want ErrFolderNotFound", err)
		}
	})

	t.Run("missing filename", func(t *testing.T) {
		req := base()
		req.Filename = ""
		if _, err := env.assets.RegisterAsset(ctx, req); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func TestFindDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.mustEvent(t, "Fin de Curso 2026")
	folder := env.mustFolder(t, event.ID, "Sexto A", nil)

	data := []byte("foto para buscar")
	asset := env.mustAsset(t, folder.ID, "buscada.jpg", data)
	sum, _ := checksum.Sum(data)
	missingSum, _ := checksum.Sum([]byte("nunca subida"))

	t.Run("hit", func(t *testing.T) {
		match, err := env.assets.FindDuplicate(ctx, sum)
		if err != nil {
			t.Fatalf("FindDuplicate error = %v", err)
		}
		if !match.Duplicate {
			t.Fatal("Duplicate = false, want true")
		}
		if match.AssetID != asset.ID || match.FolderID != folder.ID || match.Filename != "buscada.jpg" {
			t.Errorf("match = %+v, want asset %s", match, asset.ID)
		}
	})

	t.Run("uppercase digest still hits", func(t *testing.T) {
		match, err := env.assets.FindDuplicate(ctx, "  "+strings.ToUpper(sum)+"  ")
		if err != nil {
			t.Fatalf("FindDuplicate error = %v", err)
		}
		if !match.Duplicate {
			t.Error("Duplicate = false, want true after normalization")
		}
	})

	t.Run("miss", func(t *testing.T) {
		match, err := env.assets.FindDuplicate(ctx, missingSum)
		if err != nil {
			t.Fatalf("FindDuplicate error = %v", err)
		}
		if match.Duplicate {
			t.Error("Duplicate = true, want false")
		}
		if match.AssetID != "" {
			t.Errorf("AssetID = %q, want empty", match.AssetID)
		}
	})

	t.Run("malformed digest", func(t *testing.T) {
		if _, err := env.assets.FindDuplicate(ctx, "zzz"); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func TestBatchFindDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.mustEvent(t, "Fin de Curso 2026")
	folder := env.mustFolder(t, event.ID, "Sexto A", nil)

	known1 := env.mustAsset(t, folder.ID, "uno.jpg", []byte("foto uno"))
	known2 := env.mustAsset(t, folder.ID, "dos.jpg", []byte("foto dos"))
	missing, _ := checksum.Sum([]byte("foto fantasma"))

	t.Run("mixed batch preserves input order", func(t *testing.T) {
		matches, err := env.assets.BatchFindDuplicates(ctx, []string{
			known2.Checksum, missing, known1.Checksum, known2.Checksum,
		})
		if err != nil {
			t.Fatalf("BatchFindDuplicates error = %v", err)
		}
		if len(matches) != 4 {
			t.Fatalf("got %d matches, want 4", len(matches))
		}

		wantDup := []bool{true, false, true, true}
		wantAsset := []string{known2.ID, "", known1.ID, known2.ID}
		for i, m := range matches {
			if m.Duplicate != wantDup[i] {
				t.Errorf("matches[%d].Duplicate = %v, want %v", i, m.Duplicate, wantDup[i])
			}
			if m.AssetID != wantAsset[i] {
				t.Errorf("matches[%d].AssetID = %q, want %q", i, m.AssetID, wantAsset[i])
			}
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		matches, err := env.assets.BatchFindDuplicates(ctx, nil)
		if err != nil {
			t.Fatalf("BatchFindDuplicates(nil) error = %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("got %d matches, want 0", len(matches))
		}
	})

	t.Run("malformed digest in batch", func(t *testing.T) {
		_, err := env.assets.BatchFindDuplicates(ctx, []string{known1.Checksum, "corto"})
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func TestUpdateAssetStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.mustEvent(t, "Fin de Curso 2026")
	folder := env.mustFolder(t, event.ID, "Sexto A", nil)

	t.Run("full pipeline", func(t *testing.T) {
		asset := env.mustAsset(t, folder.ID, "pipeline.jpg", []byte("pipeline"))

		width, height := 4000, 6000
		preview := "previews/pipeline.webp"

		for _, status := range []models.AssetStatus{models.AssetStatusProcessing, models.AssetStatusReady} {
			req := &gallerySvc.UpdateAssetStatusRequest{Status: status}
			if status == models.AssetStatusReady {
				req.PreviewPath = &preview
				req.Width = &width
				req.Height = &height
			}
			if _, err := env.assets.UpdateAssetStatus(ctx, asset.ID, req); err != nil {
				t.Fatalf("UpdateAssetStatus(%s) error = %v", status, err)
			}
		}

		final, err := env.assets.GetAsset(ctx, asset.ID)
		if err != nil {
			t.Fatal(err)
		}
		if final.Status != models.AssetStatusReady {
			t.Errorf("status = %q, want ready", final.Status)
		}
		if final.PreviewPath == nil || *final.PreviewPath != preview {
			t.Errorf("preview path = %v, want %q", final.PreviewPath, preview)
		}
		if final.Width == nil || *final.Width != width {
			t.Errorf("width = %v, want %d", final.Width, width)
		}
	})

	t.Run("error then retry", func(t *testing.T) {
		asset := env.mustAsset(t, folder.ID, "retry.jpg", []byte("retry"))

		for _, status := range []models.AssetStatus{
			models.AssetStatusProcessing,
			models.AssetStatusError,
			models.AssetStatusProcessing,
		} {
			if _, err := env.assets.UpdateAssetStatus(ctx, asset.ID, &gallerySvc.UpdateAssetStatusRequest{Status: status}); err != nil {
				t.Fatalf("UpdateAssetStatus(%s) error = %v", status, err)
			}
		}
	})

	t.Run("illegal transition", func(t *testing.T) {
		asset := env.mustAsset(t, folder.ID, "salto.jpg", []byte("salto"))

		_, err := env.assets.UpdateAssetStatus(ctx, asset.ID, &gallerySvc.UpdateAssetStatusRequest{
			Status: models.AssetStatusReady,
		})
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("pending->ready error = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		asset := env.mustAsset(t, folder.ID, "repetido.jpg", []byte("repetido"))

		if _, err := env.assets.UpdateAssetStatus(ctx, asset.ID, &gallerySvc.UpdateAssetStatusRequest{
			Status: models.AssetStatusPending,
		}); err != nil {
			t.Errorf("re-sending current status error = %v, want nil", err)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		asset := env.mustAsset(t, folder.ID, "raro.jpg", []byte("raro"))

		_, err := env.assets.UpdateAssetStatus(ctx, asset.ID, &gallerySvc.UpdateAssetStatusRequest{
			Status: models.AssetStatus("archived"),
		})
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func TestDeleteAsset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.mustEvent(t, "Fin de Curso 2026")
	folder := env.mustFolder(t, event.ID, "Sexto A", nil)
	asset := env.mustAsset(t, folder.ID, "borrar.jpg", []byte("para borrar"))

	if err := env.assets.DeleteAsset(ctx, asset.ID); err != nil {
		t.Fatalf("DeleteAsset error = %v", err)
	}

	if _, err := env.assets.GetAsset(ctx, asset.ID); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Errorf("deleted asset still readable, error = %v", err)
	}
	if got := env.reloadFolder(t, folder.ID).PhotoCount; got != 0 {
		t.Errorf("folder photo_count = %d, want 0", got)
	}

	if err := env.assets.DeleteAsset(ctx, asset.ID); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Errorf("second delete error = %v, want ErrAssetNotFound", err)
	}
}

func TestListAssets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.mustEvent(t, "Fin de Curso 2026")
	folder := env.mustFolder(t, event.ID, "Sexto A", nil)

	for i := 0; i < 5; i++ {
		env.mustAsset(t, folder.ID,
			fmt.Sprintf("alumno-%02d.jpg", i),
			[]byte(fmt.Sprintf("foto numero %d", i)))
	}

	t.Run("first page", func(t *testing.T) {
		assets, total, err := env.assets.ListAssets(ctx, folder.ID, 1, 2)
		if err != nil {
			t.Fatalf("ListAssets error = %v", err)
		}
		if total != 5 {
			t.Errorf("total = %d, want 5", total)
		}
		if len(assets) != 2 {
			t.Fatalf("page size = %d, want 2", len(assets))
		}
		if assets[0].Filename != "alumno-00.jpg" || assets[1].Filename != "alumno-01.jpg" {
			t.Errorf("page = %q, %q, want alumno-00.jpg, alumno-01.jpg", assets[0].Filename, assets[1].Filename)
		}
	})

	t.Run("last partial page", func(t *testing.T) {
		assets, total, err := env.assets.ListAssets(ctx, folder.ID, 3, 2)
		if err != nil {
			t.Fatalf("ListAssets error = %v", err)
		}
		if total != 5 || len(assets) != 1 {
			t.Errorf("total/page = %d/%d, want 5/1", total, len(assets))
		}
	})

	t.Run("page past the end", func(t *testing.T) {
		assets, total, err := env.assets.ListAssets(ctx, folder.ID, 9, 2)
		if err != nil {
			t.Fatalf("ListAssets error = %v", err)
		}
		if total != 5 || len(assets) != 0 {
			t.Errorf("total/page = %d/%d, want 5/0", total, len(assets))
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		assets, _, err := env.assets.ListAssets(ctx, folder.ID, 0, 0)
		if err != nil {
			t.Fatalf("ListAssets error = %v", err)
		}
		if len(assets) != 5 {
			t.Errorf("page size = %d, want all 5 under the default limit", len(assets))
		}
	})

	t.Run("missing folder", func(t *testing.T) {
		if _, _, err := env.assets.ListAssets(ctx, "missing", 1, 10); !errors.Is(err, domain.ErrFolderNotFound) {
			t.Errorf("error = %v, want ErrFolderNotFound", err)
		}
	})
}

func TestVerifyAsset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.mustEvent(t, "Fin de Curso 2026")
	folder := env.mustFolder(t, event.ID, "Sexto A", nil)

	data := []byte("contenido original")
	asset := env.mustAsset(t, folder.ID, "verificar.jpg", data)

	match, err := env.assets.VerifyAsset(ctx, asset.ID, data)
	if err != nil {
		t.Fatalf("VerifyAsset error = %v", err)
	}
	if !match {
		t.Error("match = false for intact content, want true")
	}

	match, err = env.assets.VerifyAsset(ctx, asset.ID, []byte("contenido corrompido"))
	if err != nil {
		t.Fatalf("VerifyAsset(corrupted) error = %v", err)
	}
	if match {
		t.Error("match = true for corrupted content, want false")
	}

	if _, err := env.assets.VerifyAsset(ctx, "missing", data); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Errorf("error = %v, want ErrAssetNotFound", err)
	}
}

func TestSignedOriginalURL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.mustEvent(t, "Fin de Curso 2026")
	folder := env.mustFolder(t, event.ID, "Sexto A", nil)
	asset := env.mustAsset(t, folder.ID, "descarga.jpg", []byte("contenido"))

	signed, err := env.assets.SignedOriginalURL(ctx, asset.ID)
	if err != nil {
		t.Fatalf("SignedOriginalURL error = %v", err)
	}

	if signed.AssetID != asset.ID {
		t.Errorf("AssetID = %q, want %q", signed.AssetID, asset.ID)
	}
	if !strings.Contains(signed.URL, "descarga.jpg") || !strings.Contains(signed.URL, "signature=") {
		t.Errorf("URL = %q, want a signed link to the original", signed.URL)
	}
	if !signed.ExpiresAt.After(asset.CreatedAt) {
		t.Errorf("ExpiresAt = %v, want a future expiry", signed.ExpiresAt)
	}

	if _, err := env.assets.SignedOriginalURL(ctx, "missing"); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Errorf("error = %v, want ErrAssetNotFound", err)
	}
}
