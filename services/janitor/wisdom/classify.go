// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package wisdom

import (
	"strings"

	"github.com/codejanitor/janitor/services/janitor/ast"
)

var entryPointDecorators = []string{"app.command", "app.callback", "cli.command", "click.command", "typer.command"}

var pydanticDecorators = []string{"validator", "field_validator", "model_validator", "root_validator"}

var routeVerbs = []string{"get", "post", "put", "delete", "patch", "options", "head"}

var sqlAlchemyMetaNames = map[string]bool{
	"__tablename__":   true,
	"__table_args__":  true,
	"__abstract__":    true,
	"__mapper_args__": true,
}

var ormLifecycleNames = map[string]bool{
	"save": true, "delete": true, "update": true, "create": true, "get": true, "filter": true,
	"pre_save": true, "post_save": true, "pre_delete": true, "post_delete": true,
	"before_insert": true, "after_insert": true,
}

// ClassifyFile applies the fixed-order rule table to every not-yet-protected
// entity in entities, writing ProtectedBy in place. content is the file's
// raw bytes, used to slice each entity's body for the body-scan rules.
func ClassifyFile(entities []*ast.Entity, content []byte, flags FileFlags) {
	for _, e := range entities {
		classifyEntity(e, content, flags)
	}
}

func classifyEntity(e *ast.Entity, content []byte, flags FileFlags) {
	if e.ProtectedBy != ast.ProtectionNone {
		return
	}

	switch {
	case flags.IsPluginDir && ast.IsExported(e.Name):
		e.ProtectedBy = ast.ProtectionEntryPoint
	case ast.IsDunder(e.Name):
		e.ProtectedBy = ast.ProtectionLifecycleMethod
	case e.Name == "main" || hasAnyDecorator(e, entryPointDecorators):
		e.ProtectedBy = ast.ProtectionEntryPoint
	case hasAnyDecorator(e, routeDecoratorTable()):
		e.ProtectedBy = ast.ProtectionMetaprogrammingDanger
	case hasAnyDecorator(e, pydanticDecorators):
		e.ProtectedBy = ast.ProtectionPydanticAlias
	case sqlAlchemyMetaNames[e.Name]:
		e.ProtectedBy = ast.ProtectionSqlAlchemyMeta
	case flags.HasSQLAlchemy && bodyContainsAny(e, content, sqlAlchemyMetaBodyMarkers):
		e.ProtectedBy = ast.ProtectionSqlAlchemyMeta
	case flags.HasORM && e.Kind == ast.KindMethod && ormLifecycleNames[e.Name]:
		e.ProtectedBy = ast.ProtectionOrmLifecycle
	case flags.HasDI && bodyContainsAny(e, content, diPatterns):
		e.ProtectedBy = ast.ProtectionFastApiOverride
	case flags.HasQt && isQtAutoSlotName(e.Name):
		e.ProtectedBy = ast.ProtectionQtAutoSlot
	case flags.HasMetaprog && bodyContainsAny(e, content, metaprogPatterns):
		e.ProtectedBy = ast.ProtectionMetaprogrammingDanger
	case flags.AllExports != nil && flags.AllExports[e.Name]:
		e.ProtectedBy = ast.ProtectionPackageExport
	case flags.IsInit && e.ParentClass == "" && ast.IsExported(e.Name):
		e.ProtectedBy = ast.ProtectionPackageExport
	}
}

func routeDecoratorTable() []string {
	out := make([]string, 0, len(routeVerbs)*2)
	for _, prefix := range []string{"app", "router"} {
		for _, verb := range routeVerbs {
			out = append(out, prefix+"."+verb)
		}
	}
	return out
}

func hasAnyDecorator(e *ast.Entity, substrings []string) bool {
	for _, d := range e.Decorators {
		for _, s := range substrings {
			if strings.Contains(d, s) {
				return true
			}
		}
	}
	return false
}

func bodyContainsAny(e *ast.Entity, content []byte, patterns [][]byte) bool {
	body := entityBody(e, content)
	if body == nil {
		return false
	}
	return containsAny(body, patterns)
}

func entityBody(e *ast.Entity, content []byte) []byte {
	if e == nil || int(e.EndByte) > len(content) || e.StartByte >= e.EndByte {
		return nil
	}
	return content[e.StartByte:e.EndByte]
}

// isQtAutoSlotName matches Qt's auto-connect slot convention,
// on_<objectName>_<signalName> — the name starts with "on_" and the
// remainder contains at least one more underscore.
func isQtAutoSlotName(name string) bool {
	if !strings.HasPrefix(name, "on_") {
		return false
	}
	rest := name[len("on_"):]
	return strings.Contains(rest, "_")
}
