// Package tscn parses the line-oriented text format of scene (.tscn) and
// resource (.tres) files, format version 2, into an in-memory graph.
//
// A file is read one line at a time. Each line is a block header
// ("[node name=... parent=...]"), a property assignment ("key = value"), a
// continuation of a multi-line map ("\"key\": value,"), or a closer. Headers
// select the block that following assignments write into:
//
//   - Value parser: turns a literal into a typed Value. It never fails;
//     unrecognized text becomes KindRaw.
//   - Header parser: folds a header's attributes into a Block.
//   - Builder: rebuilds the node tree from parent paths and hashes each
//     node's path into a 16-bit identity.
//   - Loader: resolves ext_resource paths through a PathMap and parses the
//     referenced files recursively.
//
// Usage:
//
//	paths := tscn.PathMap{{Prefix: "res://", Root: os.DirFS("game")}}
//	scene, err := tscn.NewLoader(paths).Load(ctx, "res://Main.tscn")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(scene.Root().Name, len(scene.Nodes))
package tscn
