// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package plan

import (
	"strings"

	"github.com/walteh/logfix/pkg/text"
)

const (
	loggingImport    = "import logging"
	loggerDecl       = "logger = logging.getLogger(__name__)"
	progressDisabled = "# Progress updates suppressed for cleaner logs"
)

// lines joins its arguments with newlines; every rule below is whitespace exact
func lines(l ...string) string {
	return strings.Join(l, "\n")
}

// moduleLogger inserts the module logger between the utilities import and the class
func moduleLogger(utilitiesImport, class string) text.Insertion {
	return text.Insertion{
		Name:   "module-logger",
		Marker: loggerDecl,
		Prefix: utilitiesImport + "\n",
		Suffix: "\n\nclass " + class,
		Text:   "\n# Create module logger\n" + loggerDecl + "\n",
	}
}

// timeImportLogging puts the logging import in front of the time/datetime imports
func timeImportLogging() text.Insertion {
	return text.Insertion{
		Name:   "logging-import",
		Marker: loggingImport,
		Suffix: lines("import time", "from datetime import datetime"),
		Text:   loggingImport + "\n",
	}
}

// 🎯 Deribit returns the built-in plan that moves the deribit_wrapper package
// from print() to the logging module
func Deribit() *Plan {
	return &Plan{
		Name:   "deribit-wrapper",
		Files:  []File{authentication(), accountManagement(), trading(), marketData()},
		Verify: Verify{Pattern: DefaultVerifyPattern},
	}
}

func authentication() File {
	return File{
		Path: "deribit_wrapper/authentication.py",
		Rules: []text.ReplacementRule{
			{
				Name: "error-code",
				FromText: lines(
					`            print(f'Error code {error_code} for request {uri} with params {sanitized_params}.')`,
					`            print(error_data)`,
				),
				ToText: lines(
					`            logger.warning(f'Error code {error_code} for request {uri} with params {sanitized_params}.')`,
					`            logger.debug(f'Error data: {error_data}')`,
				),
			},
			{
				Name: "too-many-requests",
				FromText: lines(
					`        print(f'Too many requests for URI {uri}. Waiting {seconds_to_hms(wait)}...')`,
					`        for i in range(wait):`,
					`            time.sleep(1)`,
					`            print(f"Wait {seconds_to_hms(wait - i)}...", end='\r', flush=True)`,
					`        print()`,
				),
				ToText: lines(
					`        logger.warning(f'Too many requests for URI {uri}. Waiting {seconds_to_hms(wait)}...')`,
					`        for i in range(wait):`,
					`            time.sleep(1)`,
					`            `+progressDisabled,
				),
			},
			{
				Name:     "invalid-token",
				FromText: `                print(f'Invalid token. Trying to get a new one. Attempt {i + 1} of {max_attempts}...')`,
				ToText:   `                logger.debug(f'Invalid token detected (attempt {i + 1}/{max_attempts}), refreshing...')`,
			},
			{
				Name:     "temporarily-unavailable",
				FromText: `            print(f'Temporarily unavailable. Waiting 1 minute [{i + 1}/{max_attempts}]...')`,
				ToText:   `            logger.warning(f'Service temporarily unavailable. Retry {i + 1}/{max_attempts} in 60s...')`,
			},
			{
				Name:     "invalid-params",
				FromText: `        print(f'Invalid params for request {uri}: param={param}, reason={reason}')`,
				ToText:   `        logger.error(f'Invalid params for request {uri}: param={param}, reason={reason}')`,
			},
		},
	}
}

func accountManagement() File {
	return File{
		Path: "deribit_wrapper/account_management.py",
		Insertions: []text.Insertion{
			timeImportLogging(),
			moduleLogger(
				"from .utilities import DEFAULT_END, DEFAULT_START, MarginModelType, MarketOrderType, from_dt_to_ts, seconds_to_hms",
				"AccountManagement",
			),
		},
		Rules: []text.ReplacementRule{
			{
				Name: "remove-subaccount-wait",
				FromText: lines(
					`                print(f"Waiting {seconds_to_hms(wait)} before removing subaccount {subaccount_id}.")`,
					`                for i in range(wait):`,
					`                    time.sleep(1)`,
					`                    print(f"Wait {seconds_to_hms(wait - i)}...", end='\r', flush=True)`,
					`                print()`,
				),
				ToText: lines(
					`                logger.info(f"Waiting {seconds_to_hms(wait)} before removing subaccount {subaccount_id}...")`,
					`                for i in range(wait):`,
					`                    time.sleep(1)`,
					`                    `+progressDisabled,
				),
			},
		},
	}
}

func trading() File {
	return File{
		Path: "deribit_wrapper/trading.py",
		Insertions: []text.Insertion{
			timeImportLogging(),
			moduleLogger("from .utilities import DEFAULT_END, DEFAULT_START, OrdersType", "Trading"),
		},
		Rules: []text.ReplacementRule{
			{
				Name:     "not-enough-funds-reduce-only",
				FromText: `                print('Not enough funds. Already tried as reduce only.')`,
				ToText:   `                logger.warning('Not enough funds. Already tried as reduce only.')`,
			},
			{
				Name:     "not-enough-funds-retry",
				FromText: `                print('Not enough funds. Attempt as reduce only...')`,
				ToText:   `                logger.info('Not enough funds. Attempting as reduce only...')`,
			},
			{
				Name:     "settlement-in-progress",
				FromText: `                print('Settlement in progress. Waiting 1 second...')`,
				ToText:   `                logger.info('Settlement in progress. Waiting 1 second...')`,
			},
			{
				Name:     "unhandled-error-code",
				FromText: `            print(f'Error code {code} not handled yet.')`,
				ToText:   `            logger.warning(f'Error code {code} not handled yet.')`,
			},
		},
	}
}

func marketData() File {
	return File{
		Path: "deribit_wrapper/market_data.py",
		Insertions: []text.Insertion{
			{
				Name:   "logging-import",
				Marker: loggingImport,
				Prefix: "from datetime import datetime\n",
				Suffix: "\nimport pandas",
				Text:   loggingImport + "\n",
			},
		},
		Rules: []text.ReplacementRule{
			{
				Name:     "no-data-found",
				FromText: `            print(status, 'no data found for asset', asset)`,
				ToText:   `            logging.warning(f'{status}: no data found for asset {asset}')`,
			},
		},
	}
}
