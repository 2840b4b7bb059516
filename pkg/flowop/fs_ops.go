/*
Copyright 2026 The Filebench Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package flowop

import (
	"os"

	"github.com/filebench/filebench-sub000/pkg/avd"
	"github.com/filebench/filebench-sub000/pkg/ferr"
	"github.com/filebench/filebench-sub000/pkg/fileset"
	"github.com/filebench/filebench-sub000/pkg/stats"
)

func runCreateFile(ctx ThreadContext, in *Instance) error {
	fs, ok := ctx.Fileset(in.Def.FilesetName)
	if !ok {
		return ferr.Errorf(in.Def.Name, "unknown fileset %q", in.Def.FilesetName)
	}
	e, err := fs.Pick(fileset.PickMode{Kind: fileset.KindFile, Selector: fileset.SelNonexisting}, ctx.Rand(), 0)
	if err != nil {
		return err
	}
	op := in.Stats.BeginOp(stats.IONone)
	f, err := fs.Open(e, os.O_RDWR|os.O_CREATE, 0o644, fileset.OpenAttrs{})
	if err != nil {
		fs.Unbusy(e, false, false, 0)
		return ferr.Transient(in.Def.Name, err)
	}
	fs.Unbusy(e, true, true, 1)
	in.Stats.EndOp(op, 0)

	slot := ctx.NextFDSlot(false)
	ctx.SetFD(slot, FDSlot{File: f, Entry: e, Fsname: fs.Name})
	return nil
}

func runOpenFile(ctx ThreadContext, in *Instance) error {
	fs, ok := ctx.Fileset(in.Def.FilesetName)
	if !ok {
		return ferr.Errorf(in.Def.Name, "unknown fileset %q", in.Def.FilesetName)
	}
	e, err := fs.Pick(fileset.PickMode{Kind: fileset.KindFile, Selector: fileset.SelExisting}, ctx.Rand(), 0)
	if err != nil {
		return err
	}
	op := in.Stats.BeginOp(stats.IONone)
	f, err := fs.Open(e, os.O_RDWR, 0o644, fileset.OpenAttrs{})
	if err != nil {
		fs.Unbusy(e, false, false, 0)
		return ferr.Transient(in.Def.Name, err)
	}
	fs.Unbusy(e, false, false, 1)
	in.Stats.EndOp(op, 0)

	slot := ctx.NextFDSlot(false)
	ctx.SetFD(slot, FDSlot{File: f, Entry: e, Fsname: fs.Name})
	return nil
}

func runCloseFile(ctx ThreadContext, in *Instance) error {
	slot := ctx.NextFDSlot(false)
	s := ctx.FD(slot)
	if s.File == nil {
		return ferr.NoResource(in.Def.Name, nil)
	}
	fs, ok := ctx.Fileset(s.Fsname)
	op := in.Stats.BeginOp(stats.IONone)
	err := s.File.Close()
	in.Stats.EndOp(op, 0)
	ctx.ClearFD(slot)
	if err != nil {
		return ferr.Transient(in.Def.Name, err)
	}
	if ok {
		fs.Unbusy(s.Entry, false, false, -1)
	}
	return nil
}

func runDeleteFile(ctx ThreadContext, in *Instance) error {
	fs, ok := ctx.Fileset(in.Def.FilesetName)
	if !ok {
		return ferr.Errorf(in.Def.Name, "unknown fileset %q", in.Def.FilesetName)
	}
	e, err := fs.Pick(fileset.PickMode{Kind: fileset.KindFile, Selector: fileset.SelExisting}, ctx.Rand(), 0)
	if err != nil {
		return err
	}
	op := in.Stats.BeginOp(stats.IONone)
	err = os.Remove(e.Path(fs.Root))
	in.Stats.EndOp(op, 0)
	if err != nil && !os.IsNotExist(err) {
		fs.Unbusy(e, false, true, 0)
		return ferr.Transient(in.Def.Name, err)
	}
	fs.Unbusy(e, true, false, 0)
	return nil
}

func runStatFile(ctx ThreadContext, in *Instance) error {
	fs, ok := ctx.Fileset(in.Def.FilesetName)
	if !ok {
		return ferr.Errorf(in.Def.Name, "unknown fileset %q", in.Def.FilesetName)
	}
	e, err := fs.Pick(fileset.PickMode{Kind: fileset.KindFile, Selector: fileset.SelExisting}, ctx.Rand(), 0)
	if err != nil {
		return err
	}
	op := in.Stats.BeginOp(stats.IONone)
	_, err = os.Stat(e.Path(fs.Root))
	in.Stats.EndOp(op, 0)
	fs.Unbusy(e, false, false, 0)
	if err != nil {
		return ferr.Transient(in.Def.Name, err)
	}
	return nil
}

func runFsync(ctx ThreadContext, in *Instance) error {
	slot := ctx.NextFDSlot(false)
	s := ctx.FD(slot)
	if s.File == nil {
		return ferr.NoResource(in.Def.Name, nil)
	}
	op := in.Stats.BeginOp(stats.IONone)
	err := s.File.Sync()
	in.Stats.EndOp(op, 0)
	if err != nil {
		return ferr.Transient(in.Def.Name, err)
	}
	return nil
}

// runFsyncSet syncs every currently open fd slot belonging to the
// named fileset, implementing the "flush the whole working set"
// semantics of spec.md §4.5's "fsyncset".
func runFsyncSet(ctx ThreadContext, in *Instance) error {
	op := in.Stats.BeginOp(stats.IONone)
	var firstErr error
	for i := 0; i < 32; i++ {
		s := ctx.FD(i)
		if s.File == nil {
			continue
		}
		if in.Def.FilesetName != "" && s.Fsname != in.Def.FilesetName {
			continue
		}
		if err := s.File.Sync(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	in.Stats.EndOp(op, 0)
	if firstErr != nil {
		return ferr.Transient(in.Def.Name, firstErr)
	}
	return nil
}

func runMakeDir(ctx ThreadContext, in *Instance) error {
	fs, ok := ctx.Fileset(in.Def.FilesetName)
	if !ok {
		return ferr.Errorf(in.Def.Name, "unknown fileset %q", in.Def.FilesetName)
	}
	e, err := fs.Pick(fileset.PickMode{Kind: fileset.KindLeafDir, Selector: fileset.SelNonexisting}, ctx.Rand(), 0)
	if err != nil {
		return err
	}
	op := in.Stats.BeginOp(stats.IONone)
	err = os.MkdirAll(e.Path(fs.Root), 0o755)
	in.Stats.EndOp(op, 0)
	if err != nil {
		fs.Unbusy(e, false, false, 0)
		return ferr.Transient(in.Def.Name, err)
	}
	fs.Unbusy(e, true, true, 0)
	return nil
}

func runRemoveDir(ctx ThreadContext, in *Instance) error {
	fs, ok := ctx.Fileset(in.Def.FilesetName)
	if !ok {
		return ferr.Errorf(in.Def.Name, "unknown fileset %q", in.Def.FilesetName)
	}
	e, err := fs.Pick(fileset.PickMode{Kind: fileset.KindLeafDir, Selector: fileset.SelExisting}, ctx.Rand(), 0)
	if err != nil {
		return err
	}
	op := in.Stats.BeginOp(stats.IONone)
	err = os.Remove(e.Path(fs.Root))
	in.Stats.EndOp(op, 0)
	if err != nil && !os.IsNotExist(err) {
		fs.Unbusy(e, false, true, 0)
		return ferr.Transient(in.Def.Name, err)
	}
	fs.Unbusy(e, true, false, 0)
	return nil
}

func runOpenDir(ctx ThreadContext, in *Instance) error {
	fs, ok := ctx.Fileset(in.Def.FilesetName)
	if !ok {
		return ferr.Errorf(in.Def.Name, "unknown fileset %q", in.Def.FilesetName)
	}
	e, err := fs.Pick(fileset.PickMode{Kind: fileset.KindLeafDir, Selector: fileset.SelExisting}, ctx.Rand(), 0)
	if err != nil {
		return err
	}
	op := in.Stats.BeginOp(stats.IONone)
	f, err := os.Open(e.Path(fs.Root))
	in.Stats.EndOp(op, 0)
	if err != nil {
		fs.Unbusy(e, false, false, 0)
		return ferr.Transient(in.Def.Name, err)
	}
	fs.Unbusy(e, false, false, 1)
	slot := ctx.NextFDSlot(false)
	ctx.SetFD(slot, FDSlot{File: f, Entry: e, Fsname: fs.Name})
	return nil
}

func runListDir(ctx ThreadContext, in *Instance) error {
	slot := ctx.NextFDSlot(false)
	s := ctx.FD(slot)
	if s.File == nil {
		return ferr.NoResource(in.Def.Name, nil)
	}
	op := in.Stats.BeginOp(stats.IORead)
	names, err := s.File.Readdirnames(-1)
	in.Stats.EndOp(op, int64(len(names)))
	if err != nil {
		return ferr.Transient(in.Def.Name, err)
	}
	return nil
}
