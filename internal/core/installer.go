package core

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"m3m/internal/domain"
)

// Installer copies mod payloads into a game's mods directory. It accepts a
// native module file, a mod folder, or a zip archive, and never overwrites
// an existing mod of the same name.
type Installer struct {
	log *zap.Logger
}

// NewInstaller creates an installer.
func NewInstaller(log *zap.Logger) *Installer {
	return &Installer{log: log}
}

// Install places the payload at src into modsDir and returns the installed
// mod's identity. Zip archives are extracted; directories are copied
// recursively; native module files are copied as-is.
func (in *Installer) Install(modsDir, src string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("installing %s: %w", src, err)
	}
	if err := os.MkdirAll(modsDir, 0o755); err != nil {
		return "", fmt.Errorf("installing %s: %w", src, err)
	}

	switch {
	case info.IsDir():
		return in.installDir(modsDir, src)
	case strings.EqualFold(filepath.Ext(src), ".zip"):
		return in.installArchive(modsDir, src)
	case strings.EqualFold(filepath.Ext(src), domain.NativeExt):
		return in.installFile(modsDir, src)
	default:
		return "", fmt.Errorf("installing %s: unsupported payload type", src)
	}
}

func (in *Installer) installFile(modsDir, src string) (string, error) {
	name := filepath.Base(src)
	dst := filepath.Join(modsDir, name)
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("installing %s: %w", name, os.ErrExist)
	}
	if err := copyFile(dst, src); err != nil {
		return "", fmt.Errorf("installing %s: %w", name, err)
	}
	in.log.Info("installed native module", zap.String("mod", name))
	return name, nil
}

func (in *Installer) installDir(modsDir, src string) (string, error) {
	name := filepath.Base(src)
	dst := filepath.Join(modsDir, name)
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("installing %s: %w", name, os.ErrExist)
	}
	if err := copyTree(dst, src); err != nil {
		os.RemoveAll(dst)
		return "", fmt.Errorf("installing %s: %w", name, err)
	}
	in.log.Info("installed mod folder", zap.String("mod", name))
	return name, nil
}

// installArchive extracts a zip into a folder named after the archive.
// Archives whose entries all live under a single top-level folder are
// unwrapped so the mod does not end up double-nested.
func (in *Installer) installArchive(modsDir, src string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dst := filepath.Join(modsDir, name)
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("installing %s: %w", name, os.ErrExist)
	}

	zr, err := zip.OpenReader(src)
	if err != nil {
		return "", fmt.Errorf("installing %s: %w", name, err)
	}
	defer zr.Close()

	strip := commonRoot(zr.File)
	for _, f := range zr.File {
		rel := f.Name
		if strip != "" {
			rel = strings.TrimPrefix(rel, strip)
		}
		if rel == "" {
			continue
		}
		target := filepath.Join(dst, filepath.FromSlash(rel))
		// Reject entries that escape the destination.
		if !strings.HasPrefix(target, dst+string(os.PathSeparator)) {
			os.RemoveAll(dst)
			return "", fmt.Errorf("installing %s: archive entry %s escapes destination", name, f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				os.RemoveAll(dst)
				return "", fmt.Errorf("installing %s: %w", name, err)
			}
			continue
		}
		if err := extractFile(target, f); err != nil {
			os.RemoveAll(dst)
			return "", fmt.Errorf("installing %s: %w", name, err)
		}
	}
	in.log.Info("installed mod archive", zap.String("mod", name))
	return name, nil
}

// commonRoot returns the single top-level folder shared by every archive
// entry, with trailing slash, or "" when the archive is flat or mixed.
func commonRoot(files []*zip.File) string {
	root := ""
	for _, f := range files {
		top, _, found := strings.Cut(f.Name, "/")
		if !found {
			return ""
		}
		if root == "" {
			root = top
		} else if top != root {
			return ""
		}
	}
	if root == "" || root == "." || root == ".." {
		return ""
	}
	return root + "/"
}

func extractFile(target string, f *zip.File) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyTree(dst, src string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(target, path)
	})
}
