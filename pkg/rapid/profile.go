/*
 * Copyright 2026 The rapid-go Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package rapid

import (
	"errors"
	"fmt"
	"strings"
)

// OtherProfiles is the ID of the only delegation whose attributes are flattened
const OtherProfiles = "other_profiles"

// ErrMissingDefinition is returned when an attribute value has no attribute definition in its delegation
var ErrMissingDefinition = errors.New("missing attribute definition")

// DelegationProfileResponse is the aggregated profile document of a user
type DelegationProfileResponse struct {
	AggregatedDelegation *AggregatedDelegation `json:"aggregatedDelegation"`
}

type AggregatedDelegation struct {
	DelegationProfiles []DelegationProfile `json:"delegationProfiles"`
}

// DelegationProfile is a named group of attributes that a user has authorised another profile to read
type DelegationProfile struct {
	Delegation *Delegation `json:"delegation"`
	Profile    *Profile    `json:"profile"`
}

type Delegation struct {
	ID         string                `json:"id"`
	Attributes []AttributeDefinition `json:"attributes"`
}

type Profile struct {
	Attributes []AttributeValue `json:"attributes"`
}

type AttributeDefinition struct {
	GALItem *GALItem `json:"galItem"`
}

// GALItem is a directory attribute definition
type GALItem struct {
	ID              string `json:"id"`
	AllowMultiValue bool   `json:"allowMultiValue"`
}

type AttributeValue struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// FlattenedProfile maps normalised attribute names to a string, or a []string for multi-valued attributes
type FlattenedProfile map[string]interface{}

// String returns the value of a single-valued attribute
func (p FlattenedProfile) String(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

// Strings returns the values of a multi-valued attribute
func (p FlattenedProfile) Strings(key string) ([]string, bool) {
	v, ok := p[key].([]string)
	return v, ok
}

// ProfileError reports where an aggregated profile could not be flattened
type ProfileError struct {
	// Profile is the index of the delegation profile, -1 if the fault is in the document itself
	Profile int
	// Attribute is the ID of the attribute value being flattened, if any
	Attribute string
	// Field is the missing field, if any
	Field string
	Err   error
}

func (e *ProfileError) Error() string {
	msg := "aggregated profile"
	if e.Profile >= 0 {
		msg += fmt.Sprintf(": delegation profile %d", e.Profile)
	}
	if e.Attribute != "" {
		msg += fmt.Sprintf(": attribute %q", e.Attribute)
	}
	if e.Field != "" {
		msg += ": missing " + e.Field
	}
	return msg + ": " + e.Err.Error()
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}

// NormalizeName lower-cases the attribute name and replaces every space with an underscore
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

func (d *Delegation) definition(id string) (GALItem, error) {
	for i, attribute := range d.Attributes {
		if attribute.GALItem == nil {
			return GALItem{}, fmt.Errorf("%w: delegation.attributes[%d].galItem", ErrMalformedResponse, i)
		}
		if attribute.GALItem.ID == id {
			return *attribute.GALItem, nil
		}
	}
	return GALItem{}, ErrMissingDefinition
}

// FlattenProfile maps the attributes of the "other_profiles" delegations into a flat attribute map.
// Single-valued attributes keep their first value only and are omitted when they have no values.
// Multi-valued attributes keep a copy of all their values in order.
func FlattenProfile(document DelegationProfileResponse) (FlattenedProfile, error) {
	if document.AggregatedDelegation == nil {
		return nil, &ProfileError{Profile: -1, Field: "aggregatedDelegation", Err: ErrMalformedResponse}
	}
	flattened := make(FlattenedProfile)
	for i, delegationProfile := range document.AggregatedDelegation.DelegationProfiles {
		delegation := delegationProfile.Delegation
		if delegation == nil {
			return nil, &ProfileError{Profile: i, Field: "delegation", Err: ErrMalformedResponse}
		}
		if delegation.ID != OtherProfiles {
			continue
		}
		if delegationProfile.Profile == nil {
			return nil, &ProfileError{Profile: i, Field: "profile", Err: ErrMalformedResponse}
		}
		for _, attribute := range delegationProfile.Profile.Attributes {
			item, err := delegation.definition(attribute.ID)
			if err != nil {
				return nil, &ProfileError{Profile: i, Attribute: attribute.ID, Err: err}
			}
			key := NormalizeName(attribute.Name)
			if !item.AllowMultiValue {
				if len(attribute.Values) > 0 {
					flattened[key] = attribute.Values[0]
				}
				continue
			}
			flattened[key] = append(make([]string, 0, len(attribute.Values)), attribute.Values...)
		}
	}
	return flattened, nil
}
