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

import "fmt"

// runTable maps a flowop's declared type name to its run implementation
// (spec.md §4.5's primitive list). Package workload looks up each
// definition's TypeName here at build time rather than at every Run
// call.
var runTable = map[string]func(ThreadContext, *Instance) error{
	"read":           runRead,
	"write":          runWrite,
	"pwrite":         runPwrite,
	"readwholefile":  runReadWholeFile,
	"writewholefile": runWriteWholeFile,
	"appendfile":     runAppendFile,
	"appendfilerand": runAppendFileRand,
	"createfile":     runCreateFile,
	"openfile":       runOpenFile,
	"closefile":      runCloseFile,
	"deletefile":     runDeleteFile,
	"statfile":       runStatFile,
	"fsync":          runFsync,
	"fsyncset":       runFsyncSet,
	"makedir":        runMakeDir,
	"removedir":      runRemoveDir,
	"opendir":        runOpenDir,
	"listdir":        runListDir,
	"block":          runBlock,
	"wakeup":         runWakeup,
	"semblock":       runSemBlock,
	"sempost":        runSemPost,
	"delay":          runDelay,
	"hog":            runHog,
	"eventlimit":     runEventLimit,
	"iopslimit":      runIOPSLimit,
	"opslimit":       runOpsLimit,
	"bwlimit":        runBWLimit,
	"finishoncount":  runFinishOnCount,
	"finishonbytes":  runFinishOnBytes,
	"testrandvar":    runTestRandVar,
	"print":          runPrint,
	"ioctl":          runIoctl,
}

// TypeNames lists every registered flowop type name, for CLI help and
// validation.
func TypeNames() []string {
	names := make([]string, 0, len(runTable))
	for name := range runTable {
		names = append(names, name)
	}
	return names
}

// Bind attaches def's run function: runComposite for a definition with
// Inner definitions, otherwise the primitive registered under
// def.TypeName. It fails when TypeName (including an empty one) names
// no registered primitive.
func Bind(def *Def) error {
	if len(def.Inner) > 0 {
		def.run = runComposite
		return nil
	}
	fn, ok := runTable[def.TypeName]
	if !ok {
		return fmt.Errorf("flowop: unknown type %q for %q", def.TypeName, def.Name)
	}
	def.run = fn
	return nil
}

// runComposite runs every inner definition's own live instance in
// sequence, short-circuiting on the first error (spec.md §3 composite
// flowop semantics). Every call builds fresh one-shot inner instances
// and adds their stats into the composite's own; the inner instances
// are not kept between calls or registered with the runtime.
func runComposite(ctx ThreadContext, in *Instance) error {
	for _, inner := range in.Def.Inner {
		child := NewInstance(inner)
		if err := child.Run(ctx); err != nil {
			return err
		}
		child.Stats.AddInto(&in.Stats)
	}
	return nil
}
