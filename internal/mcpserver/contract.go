package mcpserver

// PageFormatContract describes the canonical Markdown page format that
// LLM consumers should follow when saving drafts.
const PageFormatContract = `# Skald Page Format Contract

Every page draft saved through Skald MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title         # REQUIRED – used in listings and search
slug: human-readable-title          # OPTIONAL – lowercase kebab-case; derived from title when absent
excerpt: One-sentence teaser        # OPTIONAL – shown in listings
tags:                               # OPTIONAL – YAML list; used for filtering
  - tag-one
  - tag-two
published_at: 2026-01-15T09:00:00Z  # OPTIONAL – future value schedules the page
cover: /media/cover.png             # OPTIONAL – cover image path or URL
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **YAML frontmatter is mandatory.** The ` + "```" + `---` + "```" + ` fences must be the first
   thing in the content (no leading blank lines). Content without frontmatter
   is treated as body only and titled from the first H1.
2. **` + "`" + `title` + "`" + ` field is required.** It is the primary display name everywhere.
3. **Slugs** are lowercase kebab-case (e.g. ` + "`" + `my-first-post` + "`" + `). An invalid slug
   rejects the save.
4. **Tags** are lowercase, kebab-case; duplicates are dropped.
5. **` + "`" + `published_at` + "`" + `** is ISO-8601. A future timestamp makes the page
   *scheduled*; it becomes *published* when the time arrives. Omit it to let
   publishing stamp the current time.
6. **Encoding** is UTF-8.
7. **No HTML** unless absolutely necessary; prefer Markdown equivalents.

## Lifecycle

- ` + "`" + `save_draft` + "`" + ` with an empty id creates a new *draft* page with a ` + "`" + `local-` + "`" + ` id.
- Saving over a ledger-confirmed page makes it *modified* until published again.
- ` + "`" + `discard_draft` + "`" + ` reverts a page to its last confirmed state.
- Publishing is confirmed by the ledger and may re-key a local page under its
  ledger-assigned id.

## Example

` + "```" + `markdown
---
title: Shipping the new editor
slug: shipping-the-new-editor
tags:
  - engineering
  - editor
published_at: 2026-02-01T08:00:00Z
---

# Shipping the new editor

We rebuilt the preview pane from scratch. Here is what changed.
` + "```" + `
`
