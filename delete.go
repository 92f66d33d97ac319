package omsvalues

import (
	"fmt"

	"github.com/ijknabla/omsvalues/cref"
)

// DeleteStartValue removes the start value of name. When Start does not hold
// it, the explicit value is removed from the resources instead. Declared
// defaults are never touched. Reports whether anything was removed.
func (v *Values) DeleteStartValue(name cref.Name) bool {
	if v.Start.Delete(name) {
		return true
	}
	return v.DeleteStartValueInResources(name)
}

// DeleteStartValueInResources removes every resource slot that supplies
// name, including alias entries targeting it. Resources left empty by the
// removal are detached.
func (v *Values) DeleteStartValueInResources(name cref.Name) bool {
	removed := false
	kept := v.Resources[:0]
	for _, r := range v.Resources {
		if r.deleteName(name) {
			removed = true
			if r.IsEmpty() {
				continue
			}
		}
		kept = append(kept, r)
	}
	v.Resources = kept
	return removed
}

// DeleteReferencesInSSD detaches the resource document filename (a .ssv or
// .ssm path) from this store. Resources left empty are dropped.
func (v *Values) DeleteReferencesInSSD(filename string) bool {
	if filename == "" {
		return false
	}
	removed := false
	kept := v.Resources[:0]
	for _, r := range v.Resources {
		if r.Name == filename {
			removed = true
			continue
		}
		if r.detach(filename) {
			removed = true
			if r.IsEmpty() {
				continue
			}
		}
		kept = append(kept, r)
	}
	v.Resources = kept
	if removed {
		v.logger.Debug("detached resource", "file", filename)
	}
	return removed
}

// DeleteResourcesInSSP detaches filename and removes the document from the
// snapshot.
func (v *Values) DeleteResourcesInSSP(snapshot Snapshot, filename string) error {
	v.DeleteReferencesInSSD(filename)
	if err := snapshot.DeleteResource(filename); err != nil {
		return fmt.Errorf("delete resource %s: %w", filename, err)
	}
	return nil
}
