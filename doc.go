/*
Package chtl is a compiler for CHTL, a brace-structured language for writing
HTML with templates, reusable styles and variables.

A small document:

  [Template] @Style Title { color: navy; font-size: 20px; }

  html {
    body {
      h1 {
        class: "title";
        style { @Style Title; }
        text { "Hello, CHTL!" }
      }
    }
  }

compiles to one stylesheet followed by the markup:

  <style>h1 { color: navy; font-size: 20px; } </style><html><body><h1 class="title">Hello, CHTL!</h1></body></html>

Usage example

  docs, err := chtl.NewBundle().
      WatchFiles(mode == "dev").  // recompile on changes (in dev)
      AddFile("views/index.chtl").
      Compile()
  if err != nil {
      return err
  }
  err = docs[0].WriteHTML(resp, chtlhtml.Options{Pretty: true})

Imports are resolved relative to the importing file and loaded once per
compilation.  Errors implement errortypes.ErrFilePos and carry a Kind, so
that callers can tell, e.g., an unresolved template from a syntax error.

Advanced Usage

The chtl package provides a friendly interface to its sub-packages.  The
syntax tree is available from chtl/parse, the resolved definitions from the
document's Context, and a binary form of the tree from chtl/serialize.

*/
package chtl
