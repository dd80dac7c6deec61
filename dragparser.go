// Package dragparser provides a content extraction engine for raw,
// untrusted HTML/XML documents. It parses malformed markup into a tree,
// scores subtrees by content density, selects the main content region,
// normalizes it (boilerplate removal, whitespace collapse, link
// resolution), optionally reshapes it with a declarative rule set, and
// serializes the result as a structured ExtractedDocument.
//
// This package contains domain types and interfaces following Ben
// Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., goquery/,
// htmltomarkdown/, trafilatura/) or after the pipeline stage they
// implement (parse/, score/, normalize/, transform/, render/).
package dragparser
