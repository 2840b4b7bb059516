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
	"io"
	"os"

	"github.com/filebench/filebench-sub000/pkg/avd"
	"github.com/filebench/filebench-sub000/pkg/ferr"
	"github.com/filebench/filebench-sub000/pkg/fileset"
	"github.com/filebench/filebench-sub000/pkg/stats"
)

// boundParams collects the scalar parameters most I/O flowops share.
type boundParams struct {
	fs       *fileset.Fileset
	iosize   int64
	random   bool
	rotateFD bool
}

func (in *Instance) bind(ctx ThreadContext) (boundParams, error) {
	var p boundParams
	var ok bool
	p.fs, ok = ctx.Fileset(in.Def.FilesetName)
	if !ok {
		return p, ferr.Errorf(in.Def.Name, "unknown fileset %q", in.Def.FilesetName)
	}
	var err error
	if p.iosize, err = avd.GetInt(in.Def.Iosize); err != nil {
		return p, ferr.Errorf(in.Def.Name, "iosize: %v", err)
	}
	if p.random, err = avd.GetBool(in.Def.Random); err != nil {
		return p, ferr.Errorf(in.Def.Name, "random: %v", err)
	}
	if p.rotateFD, err = avd.GetBool(in.Def.RotateFD); err != nil {
		return p, ferr.Errorf(in.Def.Name, "rotatefd: %v", err)
	}
	return p, nil
}

// slotFor resolves the fd slot this instance currently owns, opening
// and picking an entry on first use if the slot is empty. A fresh pick
// always comes from the existing-file partition; a slot already filled
// by a prior createfile/openfile in the same thread is used as is.
func (in *Instance) slotFor(ctx ThreadContext, p boundParams) (int, FDSlot, error) {
	slot := ctx.NextFDSlot(p.rotateFD)
	s := ctx.FD(slot)
	if s.File != nil {
		return slot, s, nil
	}
	e, err := p.fs.Pick(fileset.PickMode{Kind: fileset.KindFile, Selector: fileset.SelExisting}, ctx.Rand(), 0)
	if err != nil {
		return slot, s, err
	}
	f, err := p.fs.Open(e, os.O_RDWR, 0o644, fileset.OpenAttrs{})
	if err != nil {
		p.fs.Unbusy(e, false, false, 0)
		return slot, s, ferr.Transient(in.Def.Name, err)
	}
	p.fs.Unbusy(e, false, false, 1)
	s = FDSlot{File: f, Entry: e, Fsname: p.fs.Name}
	ctx.SetFD(slot, s)
	return slot, s, nil
}

func randOffset(fileSize, ioSize int64, ctx ThreadContext) int64 {
	span := fileSize - ioSize
	if span <= 0 {
		return 0
	}
	return int64(ctx.Rand().Int63n(span + 1))
}

func runRead(ctx ThreadContext, in *Instance) error {
	p, err := in.bind(ctx)
	if err != nil {
		return err
	}
	_, s, err := in.slotFor(ctx, p)
	if err != nil {
		return err
	}
	buf := ctx.Scratch(int(p.iosize))[:p.iosize]

	in.Lock()
	var off int64
	if p.random {
		off = randOffset(s.Entry.Size, p.iosize, ctx)
	} else {
		off = in.offset
		in.offset += p.iosize
	}
	in.Unlock()

	op := in.Stats.BeginOp(stats.IORead)
	n, err := s.File.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return ferr.Transient(in.Def.Name, err)
	}
	in.Stats.EndOp(op, int64(n))
	return nil
}

func runWrite(ctx ThreadContext, in *Instance) error {
	p, err := in.bind(ctx)
	if err != nil {
		return err
	}
	_, s, err := in.slotFor(ctx, p)
	if err != nil {
		return err
	}
	buf := ctx.Scratch(int(p.iosize))[:p.iosize]

	in.Lock()
	var off int64
	if p.random {
		off = randOffset(s.Entry.Size, p.iosize, ctx)
	} else {
		off = in.offset
		in.offset += p.iosize
	}
	in.Unlock()

	op := in.Stats.BeginOp(stats.IOWrite)
	n, err := s.File.WriteAt(buf, off)
	if err != nil {
		return ferr.Transient(in.Def.Name, err)
	}
	in.Stats.EndOp(op, int64(n))
	return nil
}

// runPwrite always writes at an explicit random offset regardless of
// Def.Random, matching pwrite(2)'s positional semantics
// (spec.md §4.5 "pwrite").
func runPwrite(ctx ThreadContext, in *Instance) error {
	p, err := in.bind(ctx)
	if err != nil {
		return err
	}
	_, s, err := in.slotFor(ctx, p)
	if err != nil {
		return err
	}
	buf := ctx.Scratch(int(p.iosize))[:p.iosize]
	off := randOffset(s.Entry.Size, p.iosize, ctx)

	op := in.Stats.BeginOp(stats.IOWrite)
	n, err := s.File.WriteAt(buf, off)
	if err != nil {
		return ferr.Transient(in.Def.Name, err)
	}
	in.Stats.EndOp(op, int64(n))
	return nil
}

// chunkSize bounds how much of a whole-file op is moved per syscall.
const chunkSize = 1 << 20

func runReadWholeFile(ctx ThreadContext, in *Instance) error {
	p, err := in.bind(ctx)
	if err != nil {
		return err
	}
	_, s, err := in.slotFor(ctx, p)
	if err != nil {
		return err
	}
	buf := ctx.Scratch(chunkSize)
	op := in.Stats.BeginOp(stats.IORead)
	var off int64
	var total int64
	for {
		n, rerr := s.File.ReadAt(buf, off)
		total += int64(n)
		off += int64(n)
		if rerr == io.EOF || n == 0 {
			break
		}
		if rerr != nil {
			return ferr.Transient(in.Def.Name, rerr)
		}
	}
	in.Stats.EndOp(op, total)
	return nil
}

func runWriteWholeFile(ctx ThreadContext, in *Instance) error {
	p, err := in.bind(ctx)
	if err != nil {
		return err
	}
	_, s, err := in.slotFor(ctx, p)
	if err != nil {
		return err
	}
	target := p.iosize
	if target <= 0 {
		target = s.Entry.Size
	}
	buf := ctx.Scratch(chunkSize)
	op := in.Stats.BeginOp(stats.IOWrite)
	var off, total int64
	for total < target {
		n := int64(len(buf))
		if remaining := target - total; remaining < n {
			n = remaining
		}
		wrote, werr := s.File.WriteAt(buf[:n], off)
		if werr != nil {
			return ferr.Transient(in.Def.Name, werr)
		}
		off += int64(wrote)
		total += int64(wrote)
	}
	in.Stats.EndOp(op, total)
	return nil
}

func runAppendFile(ctx ThreadContext, in *Instance) error {
	p, err := in.bind(ctx)
	if err != nil {
		return err
	}
	_, s, err := in.slotFor(ctx, p)
	if err != nil {
		return err
	}
	buf := ctx.Scratch(int(p.iosize))[:p.iosize]
	op := in.Stats.BeginOp(stats.IOWrite)
	// The fd is not opened with O_APPEND, so seek to the end first.
	if _, err := s.File.Seek(0, io.SeekEnd); err != nil {
		return ferr.Transient(in.Def.Name, err)
	}
	n, err := s.File.Write(buf)
	if err != nil {
		return ferr.Transient(in.Def.Name, err)
	}
	in.Stats.EndOp(op, int64(n))
	return nil
}

// runAppendFileRand appends a randomly sized write, uniform in
// [1, Iosize] bytes, at the end of the file (spec.md §4.5
// "appendfilerand").
func runAppendFileRand(ctx ThreadContext, in *Instance) error {
	p, err := in.bind(ctx)
	if err != nil {
		return err
	}
	_, s, err := in.slotFor(ctx, p)
	if err != nil {
		return err
	}
	size := p.iosize
	if size > 1 {
		size = 1 + ctx.Rand().Int63n(p.iosize)
	}
	buf := ctx.Scratch(int(size))[:size]
	op := in.Stats.BeginOp(stats.IOWrite)
	if _, err := s.File.Seek(0, io.SeekEnd); err != nil {
		return ferr.Transient(in.Def.Name, err)
	}
	n, err := s.File.Write(buf)
	if err != nil {
		return ferr.Transient(in.Def.Name, err)
	}
	in.Stats.EndOp(op, int64(n))
	return nil
}
